package memory

import (
	"context"
	"testing"
	"time"

	"github.com/oksasatya/go-social-api/internal/domain/apperror"
	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/internal/domain/repository"
)

func seedUser(t *testing.T, s *Store, id, email string) {
	t.Helper()
	u := &entity.User{ID: id, Name: "User " + id, Email: email, CreatedAt: time.Now()}
	if err := s.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("Create(user %s) error = %v", id, err)
	}
}

func TestUserRepository_EmailIsCaseInsensitive(t *testing.T) {
	s := NewStore()
	seedUser(t, s, "u1", "Ann@Example.com")

	err := s.Users().Create(context.Background(), &entity.User{ID: "u2", Email: "ann@example.COM"})
	if !apperror.Is(err, apperror.Conflict) {
		t.Errorf("Create(duplicate) error = %v, want Conflict", err)
	}
	u, err := s.Users().GetByEmail(context.Background(), "ANN@example.com")
	if err != nil || u.ID != "u1" {
		t.Errorf("GetByEmail() = %v, %v", u, err)
	}
}

func TestPostRepository_ListOrderAndTies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedUser(t, s, "u1", "a@x.io")
	seedUser(t, s, "u2", "b@x.io")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := []*entity.Post{
		{ID: "p1", AuthorID: "u1", Content: "a", CreatedAt: base},
		{ID: "p3", AuthorID: "u2", Content: "b", CreatedAt: base.Add(time.Minute)},
		{ID: "p2", AuthorID: "u1", Content: "c", CreatedAt: base.Add(time.Minute)},
	}
	for _, p := range posts {
		if err := s.Posts().Create(ctx, p); err != nil {
			t.Fatalf("Create(%s) error = %v", p.ID, err)
		}
	}

	got, err := s.Posts().List(ctx, repository.PostFilter{}, 0, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"p3", "p2", "p1"}
	for i, p := range got {
		if p.ID != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, p.ID, want[i])
		}
	}

	mine, _ := s.Posts().List(ctx, repository.PostFilter{AuthorID: "u1"}, 1, 10)
	if len(mine) != 1 || mine[0].ID != "p1" {
		t.Errorf("List(u1, offset 1) = %v", mine)
	}
	past, _ := s.Posts().List(ctx, repository.PostFilter{}, 5, 10)
	if len(past) != 0 {
		t.Errorf("List(offset past end) returned %d posts", len(past))
	}
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedUser(t, s, "u1", "a@x.io")
	p := &entity.Post{ID: "p1", AuthorID: "u1", Content: "a", CreatedAt: time.Now()}
	if err := s.Posts().Create(ctx, p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, _, err := s.Posts().ToggleLike(ctx, "p1", "u1", time.Now()); err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if _, err := s.Posts().AddComment(ctx, "p1", &entity.Comment{ID: "c1", UserID: "u1", Content: "x"}); err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	if err := s.Posts().Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, _, err := s.Posts().ToggleLike(ctx, "p1", "u1", time.Now()); !apperror.Is(err, apperror.NotFound) {
		t.Errorf("ToggleLike(deleted) error = %v, want NotFound", err)
	}
	if _, err := s.Posts().AddComment(ctx, "p1", &entity.Comment{ID: "c2", UserID: "u1", Content: "x"}); !apperror.Is(err, apperror.NotFound) {
		t.Errorf("AddComment(deleted) error = %v, want NotFound", err)
	}
	if n, _ := s.Posts().Count(ctx, repository.PostFilter{}); n != 0 {
		t.Errorf("Count() = %d after delete, want 0", n)
	}
}

func TestStore_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewStore()
	if _, err := s.Posts().List(ctx, repository.PostFilter{}, 0, 10); err == nil {
		t.Error("List() with cancelled context succeeded")
	}
	if err := s.Posts().Ping(ctx); err == nil {
		t.Error("Ping() with cancelled context succeeded")
	}
}

func TestUserRepository_ListPages(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"u3", "u1", "u2"} {
		u := &entity.User{ID: id, Email: id + "@x.io", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := s.Users().Create(ctx, u); err != nil {
			t.Fatalf("Create(%s) error = %v", id, err)
		}
	}
	first, _ := s.Users().List(ctx, 0, 2)
	rest, _ := s.Users().List(ctx, 2, 2)
	if len(first) != 2 || first[0].ID != "u3" || first[1].ID != "u1" {
		t.Errorf("List(0, 2) = %v", first)
	}
	if len(rest) != 1 || rest[0].ID != "u2" {
		t.Errorf("List(2, 2) = %v", rest)
	}
	if past, _ := s.Users().List(ctx, 9, 2); len(past) != 0 {
		t.Errorf("List(past end) returned %d users", len(past))
	}
}
