package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/oksasatya/go-social-api/internal/domain/apperror"
	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/pkg/mailer"
)

func TestEngagement_ToggleLikeAlternates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@example.com")
	bob := f.register(t, "Bob", "bob@example.com")
	p, _ := f.posts.Create(ctx, alice.ID, "Hello", "")

	want := []bool{true, false, true, false}
	for i, w := range want {
		res, err := f.engagement.ToggleLike(ctx, p.ID, bob.ID)
		if err != nil {
			t.Fatalf("ToggleLike #%d error = %v", i, err)
		}
		if res.Liked != w {
			t.Errorf("ToggleLike #%d liked = %v, want %v", i, res.Liked, w)
		}
		wantCount := 0
		if w {
			wantCount = 1
		}
		if res.LikesCount != wantCount {
			t.Errorf("ToggleLike #%d likesCount = %d, want %d", i, res.LikesCount, wantCount)
		}
	}
	got, _ := f.posts.FindByID(ctx, p.ID)
	if got.LikesCount() != 0 || got.LikedBy(bob.ID) {
		t.Errorf("after even toggles likes = %d", got.LikesCount())
	}
}

func TestEngagement_ConcurrentLikesFromDifferentUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@example.com")
	p, _ := f.posts.Create(ctx, alice.ID, "Hello", "")

	const n = 16
	users := make([]*entity.User, n)
	for i := range users {
		users[i] = f.register(t, "User", uuid.NewString()+"@example.com")
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, u := range users {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			if _, err := f.engagement.ToggleLike(ctx, p.ID, uid); err != nil {
				errs <- err
			}
		}(u.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("ToggleLike() error = %v", err)
	}

	got, _ := f.posts.FindByID(ctx, p.ID)
	if got.LikesCount() != n {
		t.Fatalf("likesCount = %d, want %d", got.LikesCount(), n)
	}
	for _, u := range users {
		if !got.LikedBy(u.ID) {
			t.Errorf("like by %s lost", u.ID)
		}
	}
}

func TestEngagement_AddComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@example.com")
	bob := f.register(t, "Bob", "bob@example.com")
	p, _ := f.posts.Create(ctx, alice.ID, "Hello", "")

	first, err := f.engagement.AddComment(ctx, p.ID, bob.ID, "  first  ")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	if first.Comment.Content != "first" || first.CommentsCount != 1 {
		t.Errorf("AddComment() = %+v", first)
	}
	if first.Comment.Author.Name != "Bob" {
		t.Errorf("comment author = %q, want Bob", first.Comment.Author.Name)
	}
	second, _ := f.engagement.AddComment(ctx, p.ID, alice.ID, "second")
	if second.CommentsCount != 2 || second.Comment.ID == first.Comment.ID {
		t.Errorf("second comment = %+v", second)
	}

	got, _ := f.posts.FindByID(ctx, p.ID)
	if len(got.Comments) != 2 || got.Comments[0].Content != "first" || got.Comments[1].Content != "second" {
		t.Errorf("comments not in insertion order: %+v", got.Comments)
	}

	for name, c := range map[string]string{"empty": "   ", "too long": strings.Repeat("x", 501)} {
		if _, err := f.engagement.AddComment(ctx, p.ID, bob.ID, c); !apperror.Is(err, apperror.InvalidContent) {
			t.Errorf("AddComment(%s) error = %v, want InvalidContent", name, err)
		}
	}
	for _, id := range []string{"bad", uuid.NewString()} {
		if _, err := f.engagement.AddComment(ctx, id, bob.ID, "hi"); !apperror.Is(err, apperror.NotFound) {
			t.Errorf("AddComment(post %q) error = %v, want NotFound", id, err)
		}
	}
}

func TestEngagement_ExampleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "User A", "a@example.com")
	b := f.register(t, "User B", "b@example.com")

	if _, err := f.posts.Create(ctx, a.ID, "Hello", ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	feed, _ := f.posts.Feed(ctx, PageRequest{Page: 1, Limit: 10})
	if len(feed.Posts) != 1 {
		t.Fatalf("feed len = %d, want 1", len(feed.Posts))
	}
	p := feed.Posts[0]
	if p.Content != "Hello" || p.LikesCount() != 0 || p.CommentsCount() != 0 {
		t.Fatalf("feed post = %+v", p)
	}

	if res, _ := f.engagement.ToggleLike(ctx, p.ID, b.ID); !res.Liked || res.LikesCount != 1 {
		t.Errorf("first toggle = %+v, want liked=true likesCount=1", res)
	}
	if res, _ := f.engagement.ToggleLike(ctx, p.ID, b.ID); res.Liked || res.LikesCount != 0 {
		t.Errorf("second toggle = %+v, want liked=false likesCount=0", res)
	}
	c, err := f.engagement.AddComment(ctx, p.ID, b.ID, "Nice!")
	if err != nil || c.CommentsCount != 1 || c.Comment.Content != "Nice!" {
		t.Errorf("AddComment() = %+v, %v", c, err)
	}
}

func TestEngagement_Notifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@example.com")
	bob := f.register(t, "Bob", "bob@example.com")
	p, _ := f.posts.Create(ctx, alice.ID, "Hello", "")
	f.pub.jobs = nil

	_, _ = f.engagement.ToggleLike(ctx, p.ID, alice.ID) // own post
	_, _ = f.engagement.ToggleLike(ctx, p.ID, bob.ID)   // like
	_, _ = f.engagement.ToggleLike(ctx, p.ID, bob.ID)   // unlike
	_, _ = f.engagement.AddComment(ctx, p.ID, alice.ID, "own comment")
	_, _ = f.engagement.AddComment(ctx, p.ID, bob.ID, "Nice!")

	got := f.pub.templates()
	want := []string{mailer.TemplatePostLiked, mailer.TemplatePostCommented}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("published = %v, want %v", got, want)
	}
	for _, j := range f.pub.jobs {
		if j.To != "alice@example.com" {
			t.Errorf("job To = %q, want post author", j.To)
		}
		if j.Data["ActorName"] != "Bob" {
			t.Errorf("job ActorName = %v, want Bob", j.Data["ActorName"])
		}
	}
}

func TestEngagement_PublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@example.com")
	bob := f.register(t, "Bob", "bob@example.com")
	p, _ := f.posts.Create(ctx, alice.ID, "Hello", "")

	f.pub.err = errors.New("broker down")
	res, err := f.engagement.ToggleLike(ctx, p.ID, bob.ID)
	if err != nil || !res.Liked {
		t.Errorf("ToggleLike() = %+v, %v, want success despite publish failure", res, err)
	}
}
