package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-social-api/internal/domain/apperror"
	"github.com/oksasatya/go-social-api/pkg/helpers"
	"github.com/oksasatya/go-social-api/pkg/mailer"
)

func TestAuthService_RegisterLoginVerify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.auth.Register(ctx, RegisterInput{Name: "  Alice ", Email: " Alice@Example.com ", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if reg.User.Name != "Alice" || reg.User.Email != "alice@example.com" {
		t.Errorf("Register() user = %+v, want trimmed name and lower-case email", reg.User)
	}
	if reg.User.Password == "secret123" || !helpers.CompareHashAndPassword(reg.User.Password, "secret123") {
		t.Error("password must be stored as a bcrypt hash")
	}
	if got := f.pub.templates(); len(got) != 1 || got[0] != mailer.TemplateWelcome {
		t.Errorf("published = %v, want [%s]", got, mailer.TemplateWelcome)
	}

	login, err := f.auth.Login(ctx, "ALICE@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	u, err := f.auth.Verify(ctx, login.Token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if u.ID != reg.User.ID {
		t.Errorf("Verify() id = %s, want %s", u.ID, reg.User.ID)
	}
}

func TestAuthService_RegisterErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Alice", "alice@example.com")

	tests := []struct {
		name string
		in   RegisterInput
		want apperror.Kind
	}{
		{"duplicate email", RegisterInput{Name: "Other", Email: "ALICE@example.com", Password: "secret123"}, apperror.Conflict},
		{"short name", RegisterInput{Name: "A", Email: "a@example.com", Password: "secret123"}, apperror.InvalidContent},
		{"bad email", RegisterInput{Name: "Bob", Email: "bob", Password: "secret123"}, apperror.InvalidContent},
		{"short password", RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "123"}, apperror.InvalidContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Register(ctx, tt.in)
			if got := apperror.KindOf(err); err == nil || got != tt.want {
				t.Errorf("Register() error = %v (kind %v), want %v", err, got, tt.want)
			}
		})
	}
}

func TestAuthService_LoginFailuresAreUniform(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Alice", "alice@example.com")

	_, errPwd := f.auth.Login(ctx, "alice@example.com", "wrong-password")
	_, errUser := f.auth.Login(ctx, "nobody@example.com", "secret123")
	for _, err := range []error{errPwd, errUser} {
		if !apperror.Is(err, apperror.InvalidCredentials) {
			t.Errorf("Login() error = %v, want InvalidCredentials", err)
		}
	}
	if errPwd.Error() != errUser.Error() {
		t.Errorf("messages differ: %q vs %q", errPwd, errUser)
	}
}

func TestAuthService_VerifyFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@example.com")

	expired, _, err := helpers.NewJWTManager("test-secret", -time.Minute).GenerateToken(alice.ID)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	ghost, _, _ := f.auth.JWT.GenerateToken(uuid.NewString())
	notUUID, _, _ := f.auth.JWT.GenerateToken("not-a-uuid")
	foreign, _, _ := helpers.NewJWTManager("other", time.Hour).GenerateToken(alice.ID)

	tests := []struct {
		name  string
		token string
		want  apperror.Kind
	}{
		{"expired", expired, apperror.ExpiredToken},
		{"garbage", "abc.def.ghi", apperror.InvalidToken},
		{"foreign signature", foreign, apperror.InvalidToken},
		{"unknown user", ghost, apperror.UnknownSubject},
		{"malformed subject", notUUID, apperror.UnknownSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Verify(ctx, tt.token)
			if got := apperror.KindOf(err); err == nil || got != tt.want {
				t.Errorf("Verify() error = %v (kind %v), want %v", err, got, tt.want)
			}
		})
	}
}

func TestAuthService_IssueToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@example.com")

	res, err := f.auth.IssueToken(ctx, alice.ID)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if u, err := f.auth.Verify(ctx, res.Token); err != nil || u.ID != alice.ID {
		t.Errorf("Verify(issued) = %v, %v", u, err)
	}
	if _, err := f.auth.IssueToken(ctx, "nope"); !apperror.Is(err, apperror.NotFound) {
		t.Errorf("IssueToken(malformed) error = %v, want NotFound", err)
	}
}
