package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"driveplane/internal/store"

	"github.com/google/uuid"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func accountRequest(account *store.Account) *http.Request {
	ctx := NewContextWithAccount(context.Background(), account)
	return httptest.NewRequest(http.MethodPost, "/tasks/x/complete", nil).WithContext(ctx)
}

func TestRateLimitMiddleware_NoAccountInContext(t *testing.T) {
	middleware := NewRateLimiter(WithTTL(5 * time.Minute)).Middleware()

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called when no account in context")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRateLimitMiddleware_AllowsRequestUnderLimit(t *testing.T) {
	handler := NewRateLimiter(WithLimit(100, 200)).Middleware()(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, accountRequest(&store.Account{ID: uuid.New(), Role: store.RoleUser}))

	if rr.Code != http.StatusOK {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRateLimitMiddleware_BlocksRequestOverLimit(t *testing.T) {
	handler := NewRateLimiter(WithLimit(1, 2)).Middleware()(okHandler())
	account := &store.Account{ID: uuid.New(), Role: store.RoleUser}

	// The burst is consumed by the first two requests.
	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, accountRequest(account))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d, want %d", i+1, rr.Code, http.StatusOK)
		}
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, accountRequest(account))

	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusTooManyRequests)
	}
	if rr.Header().Get("Retry-After") != "1" {
		t.Errorf("expected Retry-After header, got %q", rr.Header().Get("Retry-After"))
	}
}

func TestRateLimitMiddleware_IsolatesAccounts(t *testing.T) {
	handler := NewRateLimiter(WithLimit(1, 1)).Middleware()(okHandler())
	first := &store.Account{ID: uuid.New(), Role: store.RoleUser}
	second := &store.Account{ID: uuid.New(), Role: store.RoleUser}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, accountRequest(first))
	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, accountRequest(first))
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("first account: got status %d, want %d", rr.Code, http.StatusTooManyRequests)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, accountRequest(second))
	if rr.Code != http.StatusOK {
		t.Errorf("second account: got status %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRateLimitMiddleware_Unlimited(t *testing.T) {
	handler := NewRateLimiter(WithLimit(0, 0)).Middleware()(okHandler())
	account := &store.Account{ID: uuid.New(), Role: store.RoleAdmin}

	for i := 0; i < 50; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, accountRequest(account))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d, want %d", i+1, rr.Code, http.StatusOK)
		}
	}
}

func TestRateLimiter_EvictsIdleAccounts(t *testing.T) {
	rl := NewRateLimiter(WithLimit(1, 1), WithTTL(20*time.Millisecond), WithMaxEntries(10))
	handler := rl.Middleware()(okHandler())
	account := &store.Account{ID: uuid.New(), Role: store.RoleUser}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, accountRequest(account))
	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
	}
	if rl.limiters.Len() != 1 {
		t.Fatalf("expected 1 tracked account, got %d", rl.limiters.Len())
	}

	time.Sleep(100 * time.Millisecond)

	if rl.limiters.Len() != 0 {
		t.Errorf("expected idle account to be evicted, got %d entries", rl.limiters.Len())
	}
}
