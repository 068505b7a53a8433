package application

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/internal/infrastructure/memory"
	"github.com/oksasatya/go-social-api/pkg/helpers"
	"github.com/oksasatya/go-social-api/pkg/mailer"
)

func TestMain(m *testing.M) {
	helpers.PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type recordingPublisher struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
	err  error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if job, ok := body.(mailer.EmailJob); ok {
		p.jobs = append(p.jobs, job)
	}
	return p.err
}

func (p *recordingPublisher) templates() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.jobs))
	for _, j := range p.jobs {
		out = append(out, j.Template)
	}
	return out
}

type fixture struct {
	store      *memory.Store
	pub        *recordingPublisher
	auth       *AuthService
	users      *UserService
	posts      *PostService
	engagement *EngagementService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, _ := test.NewNullLogger()
	store := memory.NewStore()
	pub := &recordingPublisher{}
	notifier := NewNotifier(pub, logger, "social", "http://app.test")
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	return &fixture{
		store:      store,
		pub:        pub,
		auth:       NewAuthService(store.Users(), nil, jwt, notifier, logger),
		users:      NewUserService(store.Users(), nil, nil, "", logger),
		posts:      NewPostService(store.Posts(), store.Users(), logger, 10, 50),
		engagement: NewEngagementService(store.Posts(), store.Users(), notifier, logger),
	}
}

func (f *fixture) register(t *testing.T, name, email string) *entity.User {
	t.Helper()
	res, err := f.auth.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "secret123"})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", email, err)
	}
	return res.User
}
