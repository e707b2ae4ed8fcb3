package middleware

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusbook/facility-reservation/internal/auth"
	"github.com/campusbook/facility-reservation/internal/model"
	"github.com/campusbook/facility-reservation/internal/repository"
)

type fakeUserStore struct {
	getByUsername func(ctx context.Context, username string) (*model.User, error)
}

func (f *fakeUserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return f.getByUsername(ctx, username)
}

func aliceStore() *fakeUserStore {
	return &fakeUserStore{getByUsername: func(_ context.Context, username string) (*model.User, error) {
		if username != "alice" {
			return nil, repository.ErrUserNotFound
		}
		return &model.User{ID: 7, Username: "alice", Email: "alice@example.edu", Role: model.RoleUser, IsActive: true}, nil
	}}
}

func newTokenService(t *testing.T, ttl time.Duration) *auth.Service {
	t.Helper()
	secret := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	s, err := auth.NewService(secret, ttl, auth.NewMemoryBlacklist())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return s
}

// run sends a request through the session middleware into a probe handler
// that records the principal it saw.
func run(t *testing.T, tokens *auth.Service, users UserStore, decorate func(*http.Request)) (rec *httptest.ResponseRecorder, sawUsername string, handlerRan bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings/mine", nil)
	if decorate != nil {
		decorate(req)
	}
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Session(tokens, users)(func(c echo.Context) error {
		handlerRan = true
		if v, ok := c.Get(ContextUsername).(string); ok {
			sawUsername = v
		}
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return rec, sawUsername, handlerRan
}

func TestSessionValidCookie(t *testing.T) {
	tokens := newTokenService(t, time.Hour)
	token, err := tokens.Issue(&model.User{ID: 7, Username: "alice", Email: "alice@example.edu", Role: model.RoleUser, IsActive: true})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rec, username, ran := run(t, tokens, aliceStore(), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	})
	if !ran || rec.Code != http.StatusOK {
		t.Fatalf("code=%d ran=%v, want 200 with handler reached", rec.Code, ran)
	}
	if username != "alice" {
		t.Fatalf("principal = %q, want alice", username)
	}
}

func TestSessionValidBearer(t *testing.T) {
	tokens := newTokenService(t, time.Hour)
	token, err := tokens.Issue(&model.User{ID: 7, Username: "alice", Email: "alice@example.edu", Role: model.RoleUser, IsActive: true})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, username, ran := run(t, tokens, aliceStore(), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	if !ran || username != "alice" {
		t.Fatalf("ran=%v principal=%q, want handler reached as alice", ran, username)
	}
}

func TestSessionExpiredCookieClearsSession(t *testing.T) {
	// A negative TTL issues a token that is already expired.
	tokens := newTokenService(t, -time.Minute)
	token, err := tokens.Issue(&model.User{Username: "alice", Role: model.RoleUser, IsActive: true})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	validator := newTokenService(t, time.Hour)

	rec, _, ran := run(t, validator, aliceStore(), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	})
	if ran {
		t.Fatal("handler must not run for an expired cookie session")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401", rec.Code)
	}
	if rec.Header().Get("X-Token-Expired") != "true" {
		t.Fatal("expected X-Token-Expired header")
	}
	setCookie := rec.Header().Get("Set-Cookie")
	if !strings.Contains(setCookie, SessionCookieName+"=") || !strings.Contains(setCookie, "Max-Age=0") {
		t.Fatalf("Set-Cookie = %q, want cleared session cookie", setCookie)
	}
}

func TestSessionExpiredBearerFallsOpen(t *testing.T) {
	tokens := newTokenService(t, -time.Minute)
	token, err := tokens.Issue(&model.User{Username: "alice", Role: model.RoleUser, IsActive: true})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	validator := newTokenService(t, time.Hour)

	rec, username, ran := run(t, validator, aliceStore(), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	if !ran || rec.Code != http.StatusOK {
		t.Fatalf("code=%d ran=%v, want anonymous pass-through", rec.Code, ran)
	}
	if username != "" {
		t.Fatalf("principal = %q, want anonymous", username)
	}
}

func TestSessionNoToken(t *testing.T) {
	tokens := newTokenService(t, time.Hour)
	rec, username, ran := run(t, tokens, aliceStore(), nil)
	if !ran || rec.Code != http.StatusOK || username != "" {
		t.Fatalf("code=%d ran=%v principal=%q, want anonymous pass-through", rec.Code, ran, username)
	}
}

func TestSessionMalformedTokenIgnored(t *testing.T) {
	tokens := newTokenService(t, time.Hour)
	// Not three dot-separated segments: skipped before validation, so even a
	// cookie-sourced one degrades to anonymous.
	rec, username, ran := run(t, tokens, aliceStore(), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "nonsense"})
	})
	if !ran || rec.Code != http.StatusOK || username != "" {
		t.Fatalf("code=%d ran=%v principal=%q, want anonymous pass-through", rec.Code, ran, username)
	}
}

func TestSessionInactiveUser(t *testing.T) {
	tokens := newTokenService(t, time.Hour)
	token, err := tokens.Issue(&model.User{Username: "alice", Role: model.RoleUser})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	inactive := &fakeUserStore{getByUsername: func(_ context.Context, _ string) (*model.User, error) {
		return &model.User{Username: "alice", Role: model.RoleUser, IsActive: false}, nil
	}}

	rec, _, ran := run(t, tokens, inactive, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	})
	if ran || rec.Code != http.StatusUnauthorized {
		t.Fatalf("code=%d ran=%v, want 401 for a deactivated account", rec.Code, ran)
	}
}
