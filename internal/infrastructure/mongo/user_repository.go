package mongo

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/oksasatya/go-social-api/internal/domain/apperror"
	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/internal/domain/repository"
)

type userDoc struct {
	ID             string    `bson:"_id"`
	Name           string    `bson:"name"`
	Email          string    `bson:"email"`
	EmailLower     string    `bson:"email_lower"`
	Password       string    `bson:"password_hash"`
	Bio            string    `bson:"bio"`
	ProfilePicture string    `bson:"profile_picture"`
	Location       string    `bson:"location"`
	Website        string    `bson:"website"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func toUserDoc(u *entity.User) userDoc {
	return userDoc{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		EmailLower:     strings.ToLower(u.Email),
		Password:       u.Password,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		Location:       u.Location,
		Website:        u.Website,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (d userDoc) entity() *entity.User {
	return &entity.User{
		ID:             d.ID,
		Name:           d.Name,
		Email:          d.Email,
		Password:       d.Password,
		Bio:            d.Bio,
		ProfilePicture: d.ProfilePicture,
		Location:       d.Location,
		Website:        d.Website,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(usersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	_, err := r.col.InsertOne(ctx, toUserDoc(u))
	return translate(err, "User not found")
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email_lower": strings.ToLower(email)})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var d userDoc
	if err := r.col.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, translate(err, "User not found")
	}
	return d.entity(), nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	d := toUserDoc(u)
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": bson.M{
		"name":            d.Name,
		"email":           d.Email,
		"email_lower":     d.EmailLower,
		"password_hash":   d.Password,
		"bio":             d.Bio,
		"profile_picture": d.ProfilePicture,
		"location":        d.Location,
		"website":         d.Website,
		"updated_at":      d.UpdatedAt,
	}})
	if err != nil {
		return translate(err, "User not found")
	}
	if res.MatchedCount == 0 {
		return apperror.New(apperror.NotFound, "User not found")
	}
	return nil
}

func (r *UserRepository) Search(ctx context.Context, query string, limit int) ([]*entity.User, error) {
	pattern := bson.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"bio": pattern},
	}}
	return r.find(ctx, filter, 0, limit)
}

func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]*entity.User, error) {
	return r.find(ctx, bson.M{}, offset, limit)
}

func (r *UserRepository) find(ctx context.Context, filter bson.M, offset, limit int) ([]*entity.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, "User not found")
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err, "User not found")
	}
	out := make([]*entity.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.entity())
	}
	return out, nil
}

// summaries loads the profile slice joined into posts and comments.
func (r *UserRepository) summaries(ctx context.Context, ids []string) (map[string]entity.UserSummary, error) {
	out := make(map[string]entity.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"name": 1, "email": 1, "bio": 1, "profile_picture": 1})
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, translate(err, "User not found")
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err, "User not found")
	}
	for _, d := range docs {
		out[d.ID] = d.entity().Summary()
	}
	return out, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
