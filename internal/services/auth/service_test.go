package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pulsedate/backend/internal/domain/enums"
	"github.com/pulsedate/backend/internal/domain/model"
	pgrepo "github.com/pulsedate/backend/internal/repo/postgres"
	redrepo "github.com/pulsedate/backend/internal/repo/redis"
	auth "github.com/pulsedate/backend/internal/services/auth"
)

type fakeUserStore struct {
	nextID  int64
	byEmail map[string]model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, byEmail: make(map[string]model.User)}
}

func (s *fakeUserStore) Create(_ context.Context, params pgrepo.CreateUserParams) (model.User, error) {
	if _, exists := s.byEmail[params.Email]; exists {
		return model.User{}, pgrepo.ErrEmailTaken
	}

	user := model.User{
		ID:           s.nextID,
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: params.PasswordHash,
		Birthday:     params.Birthday,
		Gender:       params.Gender,
		Bio:          params.Bio,
	}
	s.nextID++
	s.byEmail[params.Email] = user
	return user, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

func newTestService(t *testing.T) (*auth.Service, *fakeUserStore) {
	t.Helper()

	srv, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(srv.Close)

	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	users := newFakeUserStore()
	sessions := redrepo.NewSessionRepo(client)
	jwtManager := auth.NewJWTManager("test-secret", 15*time.Minute)
	return auth.NewService(jwtManager, users, sessions, auth.MinRefreshTTL), users
}

func validSignup() auth.SignupParams {
	return auth.SignupParams{
		Email:    "Alice@Example.com",
		Name:     "Alice",
		Password: "correct-horse",
		Birthday: time.Date(1995, 4, 12, 0, 0, 0, 0, time.UTC),
		Gender:   enums.GenderFemale,
		Bio:      "coffee and climbing",
	}
}

func TestSignupAndLogin(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	res, err := service.Signup(ctx, validSignup())
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatalf("expected tokens, got %+v", res)
	}
	if res.Me.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", res.Me.Email)
	}

	login, err := service.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.Me.ID != res.Me.ID {
		t.Fatalf("login returned user %d, signup created %d", login.Me.ID, res.Me.ID)
	}

	if _, err := service.Login(ctx, "alice@example.com", "wrong-password"); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("wrong password: got %v, want auth.ErrUnauthorized", err)
	}
	if _, err := service.Login(ctx, "nobody@example.com", "correct-horse"); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("unknown email: got %v, want auth.ErrUnauthorized", err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	if _, err := service.Signup(ctx, validSignup()); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := service.Signup(ctx, validSignup()); !errors.Is(err, auth.ErrEmailTaken) {
		t.Fatalf("second signup: got %v, want ErrEmailTaken", err)
	}
}

func TestSignupValidation(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	short := validSignup()
	short.Password = "short"
	if _, err := service.Signup(ctx, short); !errors.Is(err, auth.ErrInvalidInput) {
		t.Fatalf("short password: got %v, want auth.ErrInvalidInput", err)
	}

	underage := validSignup()
	underage.Birthday = time.Now().UTC().AddDate(-17, 0, 0)
	if _, err := service.Signup(ctx, underage); !errors.Is(err, auth.ErrInvalidInput) {
		t.Fatalf("underage: got %v, want auth.ErrInvalidInput", err)
	}

	badGender := validSignup()
	badGender.Gender = enums.Gender("other")
	if _, err := service.Signup(ctx, badGender); !errors.Is(err, auth.ErrInvalidInput) {
		t.Fatalf("bad gender: got %v, want auth.ErrInvalidInput", err)
	}

	badEmail := validSignup()
	badEmail.Email = "not-an-email"
	if _, err := service.Signup(ctx, badEmail); !errors.Is(err, auth.ErrInvalidInput) {
		t.Fatalf("bad email: got %v, want auth.ErrInvalidInput", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	res, err := service.Signup(ctx, validSignup())
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	refreshed, err := service.Refresh(ctx, res.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == res.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}

	if _, err := service.Refresh(ctx, res.RefreshToken); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("stale refresh token: got %v, want auth.ErrUnauthorized", err)
	}
}

func TestValidateAccessTokenAfterLogout(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	res, err := service.Signup(ctx, validSignup())
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	claims, err := service.ValidateAccessToken(ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if claims.UserID != res.Me.ID {
		t.Fatalf("claims user %d, want %d", claims.UserID, res.Me.ID)
	}

	if err := service.Logout(ctx, claims.SID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := service.ValidateAccessToken(ctx, res.AccessToken); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("token after logout: got %v, want auth.ErrUnauthorized", err)
	}
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	first, err := service.Signup(ctx, validSignup())
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	second, err := service.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	if err := service.LogoutAll(ctx, first.Me.ID); err != nil {
		t.Fatalf("logout all: %v", err)
	}

	for _, token := range []string{first.AccessToken, second.AccessToken} {
		if _, err := service.ValidateAccessToken(ctx, token); !errors.Is(err, auth.ErrUnauthorized) {
			t.Fatalf("token after logout all: got %v, want auth.ErrUnauthorized", err)
		}
	}
}
