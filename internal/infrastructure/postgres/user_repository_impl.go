package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-social-api/internal/domain/apperror"
	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/internal/domain/repository"
)

const userColumns = `id, name, email, password_hash, bio, profile_picture, location, website, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, bio, profile_picture, location, website, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, u.ID, u.Name, u.Email, u.Password, u.Bio, u.ProfilePicture, u.Location, u.Website, u.CreatedAt, u.UpdatedAt)
	return translate(err, "User not found")
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, bio = $4, profile_picture = $5,
		    location = $6, website = $7, updated_at = $8
		WHERE id = $9
	`, u.Name, u.Email, u.Password, u.Bio, u.ProfilePicture, u.Location, u.Website, u.UpdatedAt, u.ID)
	if err != nil {
		return translate(err, "User not found")
	}
	if res.RowsAffected() == 0 {
		return apperror.New(apperror.NotFound, "User not found")
	}
	return nil
}

func (r *UserRepository) Search(ctx context.Context, query string, limit int) ([]*entity.User, error) {
	pattern := "%" + escapeLike(query) + "%"
	return r.query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE name ILIKE $1 OR bio ILIKE $1
		ORDER BY created_at, id
		LIMIT $2
	`, pattern, limit)
}

func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]*entity.User, error) {
	return r.query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at, id
		OFFSET $1 LIMIT $2
	`, offset, limit)
}

func (r *UserRepository) query(ctx context.Context, sql string, args ...any) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(err, "User not found")
	}
	defer rows.Close()

	out := make([]*entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "User not found")
	}
	return out, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Bio, &u.ProfilePicture,
		&u.Location, &u.Website, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, translate(err, "User not found")
	}
	return u, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes LIKE metacharacters so the query matches literally.
func escapeLike(s string) string { return likeEscaper.Replace(s) }

var _ repository.UserRepository = (*UserRepository)(nil)
