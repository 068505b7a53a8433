package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/oksasatya/go-social-api/internal/domain/apperror"
	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/internal/domain/repository"
)

type postDoc struct {
	ID        string       `bson:"_id"`
	AuthorID  string       `bson:"author_id"`
	Content   string       `bson:"content"`
	Image     string       `bson:"image"`
	Likes     []likeDoc    `bson:"likes"`
	Comments  []commentDoc `bson:"comments"`
	CreatedAt time.Time    `bson:"created_at"`
	UpdatedAt time.Time    `bson:"updated_at"`
}

type likeDoc struct {
	UserID    string    `bson:"user"`
	CreatedAt time.Time `bson:"created_at"`
}

type commentDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
}

// toggleAttempts bounds the pull/push retry when another request flips the
// same user's like between the two conditional updates.
const toggleAttempts = 3

type PostRepository struct {
	col   *mongo.Collection
	users *UserRepository
}

func NewPostRepository(db *mongo.Database, users *UserRepository) *PostRepository {
	return &PostRepository{col: db.Collection(postsCollection), users: users}
}

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	author, err := r.users.GetByID(ctx, p.AuthorID)
	if err != nil {
		return err
	}
	doc := postDoc{
		ID:        p.ID,
		AuthorID:  p.AuthorID,
		Content:   p.Content,
		Image:     p.Image,
		Likes:     []likeDoc{},
		Comments:  []commentDoc{},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return translate(err, "Post not found")
	}
	p.Author = author.Summary()
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	var d postDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, translate(err, "Post not found")
	}
	posts, err := r.hydrate(ctx, []postDoc{d})
	if err != nil {
		return nil, err
	}
	return posts[0], nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "Post not found")
	}
	if res.DeletedCount == 0 {
		return apperror.New(apperror.NotFound, "Post not found")
	}
	return nil
}

func filterDoc(filter repository.PostFilter) bson.M {
	if filter.AuthorID == "" {
		return bson.M{}
	}
	return bson.M{"author_id": filter.AuthorID}
}

func (r *PostRepository) List(ctx context.Context, filter repository.PostFilter, offset, limit int) ([]*entity.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, filterDoc(filter), opts)
	if err != nil {
		return nil, translate(err, "Post not found")
	}
	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err, "Post not found")
	}
	return r.hydrate(ctx, docs)
}

func (r *PostRepository) Count(ctx context.Context, filter repository.PostFilter) (int, error) {
	n, err := r.col.CountDocuments(ctx, filterDoc(filter))
	if err != nil {
		return 0, translate(err, "Post not found")
	}
	return int(n), nil
}

// likeToggler is the slice of the posts collection the toggle loop needs.
// pullLike and pushLike report mongo.ErrNoDocuments when their condition did
// not match.
type likeToggler interface {
	pullLike(ctx context.Context, postID, userID string) (int, error)
	pushLike(ctx context.Context, postID, userID string, at time.Time) (int, error)
	exists(ctx context.Context, postID string) (bool, error)
}

// ToggleLike issues a conditional $pull and, when the user had not liked the
// post, a conditional $push. Each is a single-document atomic update, so
// likes by other users are never lost.
func (r *PostRepository) ToggleLike(ctx context.Context, postID, userID string, at time.Time) (bool, int, error) {
	return toggleLike(ctx, r, postID, userID, at)
}

func toggleLike(ctx context.Context, s likeToggler, postID, userID string, at time.Time) (bool, int, error) {
	for i := 0; i < toggleAttempts; i++ {
		n, err := s.pullLike(ctx, postID, userID)
		if err == nil {
			return false, n, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return false, 0, translate(err, "Post not found")
		}

		n, err = s.pushLike(ctx, postID, userID, at)
		if err == nil {
			return true, n, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return false, 0, translate(err, "Post not found")
		}

		// Both conditions missed: the post is gone or another request
		// flipped this user's like in between.
		if exists, err := s.exists(ctx, postID); err != nil {
			return false, 0, err
		} else if !exists {
			return false, 0, apperror.New(apperror.NotFound, "Post not found")
		}
	}
	return false, 0, apperror.New(apperror.Conflict, "Like is being updated, try again")
}

var likesAfter = options.FindOneAndUpdate().
	SetReturnDocument(options.After).
	SetProjection(bson.M{"likes.user": 1})

func (r *PostRepository) pullLike(ctx context.Context, postID, userID string) (int, error) {
	var d postDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": postID, "likes.user": userID},
		bson.M{"$pull": bson.M{"likes": bson.M{"user": userID}}},
		likesAfter,
	).Decode(&d)
	return len(d.Likes), err
}

func (r *PostRepository) pushLike(ctx context.Context, postID, userID string, at time.Time) (int, error) {
	var d postDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": postID, "likes.user": bson.M{"$ne": userID}},
		bson.M{"$push": bson.M{"likes": likeDoc{UserID: userID, CreatedAt: at}}},
		likesAfter,
	).Decode(&d)
	return len(d.Likes), err
}

func (r *PostRepository) AddComment(ctx context.Context, postID string, c *entity.Comment) (int, error) {
	author, err := r.users.GetByID(ctx, c.UserID)
	if err != nil {
		return 0, err
	}
	var d postDoc
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": postID},
		bson.M{"$push": bson.M{"comments": commentDoc{
			ID:        c.ID,
			UserID:    c.UserID,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		}}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"comments._id": 1}),
	).Decode(&d)
	if err != nil {
		return 0, translate(err, "Post not found")
	}
	c.Author = author.Summary()
	return len(d.Comments), nil
}

func (r *PostRepository) Ping(ctx context.Context) error {
	if err := r.col.Database().Client().Ping(ctx, nil); err != nil {
		return apperror.Wrap(apperror.Unavailable, "database unavailable", err)
	}
	return nil
}

func (r *PostRepository) exists(ctx context.Context, postID string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": postID}, options.Count().SetLimit(1))
	if err != nil {
		return false, translate(err, "Post not found")
	}
	return n > 0, nil
}

// hydrate joins author and commenter summaries with one $in query.
func (r *PostRepository) hydrate(ctx context.Context, docs []postDoc) ([]*entity.Post, error) {
	seen := make(map[string]struct{})
	ids := make([]string, 0, len(docs))
	add := func(id string) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, d := range docs {
		add(d.AuthorID)
		for _, c := range d.Comments {
			add(c.UserID)
		}
	}
	users, err := r.users.summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	summary := func(id string) entity.UserSummary {
		if s, ok := users[id]; ok {
			return s
		}
		return entity.UserSummary{ID: id}
	}

	out := make([]*entity.Post, 0, len(docs))
	for _, d := range docs {
		p := &entity.Post{
			ID:        d.ID,
			AuthorID:  d.AuthorID,
			Author:    summary(d.AuthorID),
			Content:   d.Content,
			Image:     d.Image,
			Likes:     make([]entity.Like, 0, len(d.Likes)),
			Comments:  make([]entity.Comment, 0, len(d.Comments)),
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		}
		for _, l := range d.Likes {
			p.Likes = append(p.Likes, entity.Like{UserID: l.UserID, CreatedAt: l.CreatedAt})
		}
		for _, c := range d.Comments {
			p.Comments = append(p.Comments, entity.Comment{
				ID:        c.ID,
				UserID:    c.UserID,
				Author:    summary(c.UserID),
				Content:   c.Content,
				CreatedAt: c.CreatedAt,
			})
		}
		out = append(out, p)
	}
	return out, nil
}

var _ repository.PostRepository = (*PostRepository)(nil)
