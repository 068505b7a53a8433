// Package memory is an in-process implementation of the user and post
// repositories. It backs STORE_DRIVER=memory and the test suites.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/go-social-api/internal/domain/apperror"
	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/internal/domain/repository"
)

// Store holds users and posts behind a single lock so that reads see a
// consistent join of posts and their authors.
type Store struct {
	mu      sync.RWMutex
	users   map[string]entity.User
	byEmail map[string]string
	posts   map[string]*postRecord
}

type postRecord struct {
	post     entity.Post
	likes    []entity.Like
	comments []entity.Comment
}

func NewStore() *Store {
	return &Store{
		users:   make(map[string]entity.User),
		byEmail: make(map[string]string),
		posts:   make(map[string]*postRecord),
	}
}

func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

func (s *Store) Posts() *PostRepository { return &PostRepository{s: s} }

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, taken := r.s.byEmail[key]; taken {
		return apperror.New(apperror.Conflict, "User already exists with this email")
	}
	r.s.users[u.ID] = *u
	r.s.byEmail[key] = u.ID
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperror.New(apperror.NotFound, "User not found")
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, apperror.New(apperror.NotFound, "User not found")
	}
	u := r.s.users[id]
	return &u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.users[u.ID]
	if !ok {
		return apperror.New(apperror.NotFound, "User not found")
	}
	oldKey, newKey := strings.ToLower(old.Email), strings.ToLower(u.Email)
	if oldKey != newKey {
		if _, taken := r.s.byEmail[newKey]; taken {
			return apperror.New(apperror.Conflict, "User already exists with this email")
		}
		delete(r.s.byEmail, oldKey)
		r.s.byEmail[newKey] = u.ID
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepository) Search(ctx context.Context, query string, limit int) ([]*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	matches := r.sorted(func(u entity.User) bool {
		return strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Bio), q)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return pointers(matches), nil
}

func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all := r.sorted(func(entity.User) bool { return true })
	if offset >= len(all) {
		return []*entity.User{}, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return pointers(all), nil
}

// sorted copies the users accepted by keep, oldest first.
func (r *UserRepository) sorted(keep func(entity.User) bool) []entity.User {
	r.s.mu.RLock()
	out := make([]entity.User, 0)
	for _, u := range r.s.users {
		if keep(u) {
			out = append(out, u)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func pointers(us []entity.User) []*entity.User {
	out := make([]*entity.User, len(us))
	for i := range us {
		out[i] = &us[i]
	}
	return out
}

type PostRepository struct{ s *Store }

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[p.AuthorID]; !ok {
		return apperror.New(apperror.NotFound, "User not found")
	}
	rec := &postRecord{post: *p}
	rec.post.Likes, rec.post.Comments = nil, nil
	r.s.posts[p.ID] = rec
	p.Author = r.s.summary(p.AuthorID)
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.posts[id]
	if !ok {
		return nil, apperror.New(apperror.NotFound, "Post not found")
	}
	return r.s.populate(rec), nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return apperror.New(apperror.NotFound, "Post not found")
	}
	delete(r.s.posts, id)
	return nil
}

func (r *PostRepository) List(ctx context.Context, filter repository.PostFilter, offset, limit int) ([]*entity.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	recs := r.s.matching(filter)
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i].post, recs[j].post
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID > b.ID
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	if offset >= len(recs) {
		return []*entity.Post{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(recs) {
		end = len(recs)
	}
	out := make([]*entity.Post, 0, end-offset)
	for _, rec := range recs[offset:end] {
		out = append(out, r.s.populate(rec))
	}
	return out, nil
}

func (r *PostRepository) Count(ctx context.Context, filter repository.PostFilter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.matching(filter)), nil
}

func (r *PostRepository) ToggleLike(ctx context.Context, postID, userID string, at time.Time) (bool, int, error) {
	if err := ctx.Err(); err != nil {
		return false, 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.posts[postID]
	if !ok {
		return false, 0, apperror.New(apperror.NotFound, "Post not found")
	}
	for i, l := range rec.likes {
		if l.UserID == userID {
			rec.likes = append(rec.likes[:i:i], rec.likes[i+1:]...)
			return false, len(rec.likes), nil
		}
	}
	rec.likes = append(rec.likes, entity.Like{UserID: userID, CreatedAt: at})
	return true, len(rec.likes), nil
}

func (r *PostRepository) AddComment(ctx context.Context, postID string, c *entity.Comment) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.posts[postID]
	if !ok {
		return 0, apperror.New(apperror.NotFound, "Post not found")
	}
	stored := *c
	stored.Author = entity.UserSummary{}
	rec.comments = append(rec.comments, stored)
	c.Author = r.s.summary(c.UserID)
	return len(rec.comments), nil
}

func (r *PostRepository) Ping(ctx context.Context) error { return ctx.Err() }

// matching and populate expect s.mu to be held.
func (s *Store) matching(filter repository.PostFilter) []*postRecord {
	out := make([]*postRecord, 0, len(s.posts))
	for _, rec := range s.posts {
		if filter.AuthorID != "" && rec.post.AuthorID != filter.AuthorID {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (s *Store) populate(rec *postRecord) *entity.Post {
	p := rec.post
	p.Author = s.summary(p.AuthorID)
	p.Likes = append([]entity.Like(nil), rec.likes...)
	p.Comments = make([]entity.Comment, len(rec.comments))
	for i, c := range rec.comments {
		c.Author = s.summary(c.UserID)
		p.Comments[i] = c
	}
	return &p
}

func (s *Store) summary(userID string) entity.UserSummary {
	u, ok := s.users[userID]
	if !ok {
		return entity.UserSummary{ID: userID}
	}
	return u.Summary()
}

var (
	_ repository.UserRepository = (*UserRepository)(nil)
	_ repository.PostRepository = (*PostRepository)(nil)
)
