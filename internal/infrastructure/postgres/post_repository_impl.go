package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-social-api/internal/domain/apperror"
	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/internal/domain/repository"
)

const postSelect = `
	SELECT p.id, p.author_id, p.content, p.image, p.created_at, p.updated_at,
	       u.name, u.email, u.bio, u.profile_picture
	FROM posts p
	JOIN users u ON u.id = p.author_id`

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	row := r.pool.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO posts (id, author_id, content, image, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING author_id
		)
		SELECT u.id, u.name, u.email, u.bio, u.profile_picture
		FROM ins JOIN users u ON u.id = ins.author_id
	`, p.ID, p.AuthorID, p.Content, p.Image, p.CreatedAt, p.UpdatedAt)
	a := &p.Author
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Bio, &a.ProfilePicture); err != nil {
		return translate(err, "User not found")
	}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	row := r.pool.QueryRow(ctx, postSelect+` WHERE p.id = $1`, id)
	p, err := scanPost(row)
	if err != nil {
		return nil, translate(err, "Post not found")
	}
	if err := r.loadEngagement(ctx, []*entity.Post{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete relies on ON DELETE CASCADE for likes and comments, so the removal is
// a single statement.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return translate(err, "Post not found")
	}
	if res.RowsAffected() == 0 {
		return apperror.New(apperror.NotFound, "Post not found")
	}
	return nil
}

func (r *PostRepository) List(ctx context.Context, filter repository.PostFilter, offset, limit int) ([]*entity.Post, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if filter.AuthorID != "" {
		rows, err = r.pool.Query(ctx, postSelect+`
			WHERE p.author_id = $1
			ORDER BY p.created_at DESC, p.id DESC
			OFFSET $2 LIMIT $3`, filter.AuthorID, offset, limit)
	} else {
		rows, err = r.pool.Query(ctx, postSelect+`
			ORDER BY p.created_at DESC, p.id DESC
			OFFSET $1 LIMIT $2`, offset, limit)
	}
	if err != nil {
		return nil, translate(err, "Post not found")
	}
	defer rows.Close()

	posts := make([]*entity.Post, 0, limit)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, translate(err, "Post not found")
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "Post not found")
	}
	if err := r.loadEngagement(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) Count(ctx context.Context, filter repository.PostFilter) (int, error) {
	var (
		n   int
		err error
	)
	if filter.AuthorID != "" {
		err = r.pool.QueryRow(ctx, `SELECT count(*) FROM posts WHERE author_id = $1`, filter.AuthorID).Scan(&n)
	} else {
		err = r.pool.QueryRow(ctx, `SELECT count(*) FROM posts`).Scan(&n)
	}
	if err != nil {
		return 0, translate(err, "Post not found")
	}
	return n, nil
}

// ToggleLike locks the post row in share mode so a concurrent delete cannot
// interleave, then flips the (post, user) row. Concurrent likes by different
// users touch different rows and never overwrite each other.
func (r *PostRepository) ToggleLike(ctx context.Context, postID, userID string, at time.Time) (bool, int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, 0, translate(err, "Post not found")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockPost(ctx, tx, postID); err != nil {
		return false, 0, err
	}

	res, err := tx.Exec(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, 0, translate(err, "Post not found")
	}
	liked := false
	if res.RowsAffected() == 0 {
		if _, err := tx.Exec(ctx, `
			INSERT INTO post_likes (post_id, user_id, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (post_id, user_id) DO NOTHING
		`, postID, userID, at); err != nil {
			return false, 0, translate(err, "Post not found")
		}
		liked = true
	}

	var count int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&count); err != nil {
		return false, 0, translate(err, "Post not found")
	}
	if err := tx.Commit(ctx); err != nil {
		return false, 0, translate(err, "Post not found")
	}
	return liked, count, nil
}

func (r *PostRepository) AddComment(ctx context.Context, postID string, c *entity.Comment) (int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, translate(err, "Post not found")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockPost(ctx, tx, postID); err != nil {
		return 0, err
	}

	a := &c.Author
	err = tx.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO post_comments (id, post_id, user_id, content, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING user_id
		)
		SELECT u.id, u.name, u.email, u.bio, u.profile_picture
		FROM ins JOIN users u ON u.id = ins.user_id
	`, c.ID, postID, c.UserID, c.Content, c.CreatedAt).Scan(&a.ID, &a.Name, &a.Email, &a.Bio, &a.ProfilePicture)
	if err != nil {
		return 0, translate(err, "User not found")
	}

	var count int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM post_comments WHERE post_id = $1`, postID).Scan(&count); err != nil {
		return 0, translate(err, "Post not found")
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, translate(err, "Post not found")
	}
	return count, nil
}

func (r *PostRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return apperror.Wrap(apperror.Unavailable, "database unavailable", err)
	}
	return nil
}

func lockPost(ctx context.Context, tx pgx.Tx, postID string) error {
	var one int
	if err := tx.QueryRow(ctx, `SELECT 1 FROM posts WHERE id = $1 FOR SHARE`, postID).Scan(&one); err != nil {
		return translate(err, "Post not found")
	}
	return nil
}

func scanPost(row pgx.Row) (*entity.Post, error) {
	p := &entity.Post{}
	a := &p.Author
	if err := row.Scan(&p.ID, &p.AuthorID, &p.Content, &p.Image, &p.CreatedAt, &p.UpdatedAt,
		&a.Name, &a.Email, &a.Bio, &a.ProfilePicture); err != nil {
		return nil, err
	}
	a.ID = p.AuthorID
	p.Likes = []entity.Like{}
	p.Comments = []entity.Comment{}
	return p, nil
}

// loadEngagement fills likes and comments for a page of posts with one query
// each instead of one per post.
func (r *PostRepository) loadEngagement(ctx context.Context, posts []*entity.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(posts))
	byID := make(map[string]*entity.Post, len(posts))
	for _, p := range posts {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return apperror.Wrap(apperror.Internal, "corrupt post id", err)
		}
		ids = append(ids, id)
		byID[p.ID] = p
	}

	rows, err := r.pool.Query(ctx, `
		SELECT post_id, user_id, created_at
		FROM post_likes
		WHERE post_id = ANY($1)
		ORDER BY created_at, user_id
	`, ids)
	if err != nil {
		return translate(err, "Post not found")
	}
	for rows.Next() {
		var postID string
		var l entity.Like
		if err := rows.Scan(&postID, &l.UserID, &l.CreatedAt); err != nil {
			rows.Close()
			return translate(err, "Post not found")
		}
		if p := byID[postID]; p != nil {
			p.Likes = append(p.Likes, l)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return translate(err, "Post not found")
	}

	rows, err = r.pool.Query(ctx, `
		SELECT c.id, c.post_id, c.user_id, c.content, c.created_at,
		       u.name, u.email, u.bio, u.profile_picture
		FROM post_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = ANY($1)
		ORDER BY c.seq
	`, ids)
	if err != nil {
		return translate(err, "Post not found")
	}
	defer rows.Close()
	for rows.Next() {
		var postID string
		var c entity.Comment
		a := &c.Author
		if err := rows.Scan(&c.ID, &postID, &c.UserID, &c.Content, &c.CreatedAt,
			&a.Name, &a.Email, &a.Bio, &a.ProfilePicture); err != nil {
			return translate(err, "Post not found")
		}
		a.ID = c.UserID
		if p := byID[postID]; p != nil {
			p.Comments = append(p.Comments, c)
		}
	}
	if err := rows.Err(); err != nil {
		return translate(err, "Post not found")
	}
	return nil
}

var _ repository.PostRepository = (*PostRepository)(nil)
