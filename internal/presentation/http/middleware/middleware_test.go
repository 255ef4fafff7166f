package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sangkips/godi-api/internal/domain/entity"
	"github.com/sangkips/godi-api/internal/testutil"
	"github.com/sangkips/godi-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func asUser(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(UserIDKey, id)
		c.Next()
	}
}

func TestAuthMiddleware(t *testing.T) {
	verifier := utils.NewTokenVerifier("secret", "")
	owner := uuid.New()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   owner.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	var seen uuid.UUID
	router := gin.New()
	router.GET("/", AuthMiddleware(verifier), func(c *gin.Context) {
		seen = c.MustGet(UserIDKey).(uuid.UUID)
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"missing", "", http.StatusUnauthorized, "Authorization header is required"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Invalid authorization header format"},
		{"bad token", "Bearer abc", http.StatusUnauthorized, "Invalid or expired token"},
		{"valid", "Bearer " + signed, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			if tt.body != "" {
				assert.Contains(t, w.Body.String(), tt.body)
			}
		})
	}
	assert.Equal(t, owner, seen)
}

func TestIdempotency_StoresOnlySuccess(t *testing.T) {
	store := testutil.NewStore()
	owner := uuid.New()
	calls := 0
	router := gin.New()
	router.POST("/sales", asUser(owner), Idempotency(IdempotencyConfig{Repo: store.Idempotency()}), func(c *gin.Context) {
		calls++
		if calls == 1 {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record sale"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": calls})
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(`{"items":[]}`))
		req.Header.Set(IdempotencyKeyHeader, "retry-me")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusInternalServerError, send().Code)
	second := send()
	assert.Equal(t, http.StatusCreated, second.Code)
	third := send()
	assert.Equal(t, http.StatusCreated, third.Code)
	assert.Equal(t, "true", third.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, second.Body.String(), third.Body.String())
	assert.Equal(t, 2, calls)
}

func TestIdempotency_ExpiredKeyIsReprocessed(t *testing.T) {
	store := testutil.NewStore()
	owner := uuid.New()
	require.NoError(t, store.Idempotency().Save(context.Background(), &entity.IdempotencyKey{
		Key:          "old",
		UserID:       owner,
		ResponseCode: http.StatusCreated,
		ResponseBody: `{"data":"stale"}`,
		ExpiresAt:    time.Now().Add(-time.Minute),
	}))

	router := gin.New()
	router.POST("/sales", asUser(owner), Idempotency(IdempotencyConfig{Repo: store.Idempotency()}), func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"data": "fresh"})
	})

	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "old")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "fresh")
	assert.Empty(t, w.Header().Get("X-Idempotency-Replayed"))
}

func TestIdempotency_KeyTooLong(t *testing.T) {
	router := gin.New()
	router.POST("/sales", asUser(uuid.New()), Idempotency(IdempotencyConfig{Repo: testutil.NewStore().Idempotency()}), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(`{}`))
	req.Header.Set(IdempotencyKeyHeader, strings.Repeat("k", 256))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIdempotency_LookupFailureFallsThrough(t *testing.T) {
	repo := brokenIdempotency{}
	called := false
	router := gin.New()
	router.POST("/sales", asUser(uuid.New()), Idempotency(IdempotencyConfig{Repo: repo}), func(c *gin.Context) {
		called = true
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "k")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusCreated, w.Code)
}

type brokenIdempotency struct{}

func (brokenIdempotency) GetByKey(context.Context, string, uuid.UUID) (*entity.IdempotencyKey, error) {
	return nil, errors.New("relation does not exist")
}

func (brokenIdempotency) Save(context.Context, *entity.IdempotencyKey) error { return nil }

func (brokenIdempotency) Reserve(context.Context, *entity.IdempotencyKey) (bool, error) {
	return false, errors.New("relation does not exist")
}

func (brokenIdempotency) Release(context.Context, string, uuid.UUID) error { return nil }

func (brokenIdempotency) DeleteExpired(context.Context) (int64, error) { return 0, nil }

func TestIdempotency_ConcurrentRetryIsRejectedWhileInFlight(t *testing.T) {
	store := testutil.NewStore()
	owner := uuid.New()
	release := make(chan struct{})
	var calls int32
	router := gin.New()
	router.POST("/sales", asUser(owner), Idempotency(IdempotencyConfig{Repo: store.Idempotency()}), func(c *gin.Context) {
		atomic.AddInt32(&calls, 1)
		<-release
		c.JSON(http.StatusCreated, gin.H{"data": "recorded"})
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(`{"items":[]}`))
		req.Header.Set(IdempotencyKeyHeader, "double-click")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() { first <- send() }()
	require.Eventually(t, func() bool {
		k, err := store.Idempotency().GetByKey(context.Background(), "double-click", owner)
		return err == nil && k != nil && k.IsPending()
	}, time.Second, 5*time.Millisecond)

	second := send()
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Contains(t, second.Body.String(), "already in progress")

	close(release)
	assert.Equal(t, http.StatusCreated, (<-first).Code)

	third := send()
	assert.Equal(t, http.StatusCreated, third.Code)
	assert.Equal(t, "true", third.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestIdempotency_PanicReleasesKey(t *testing.T) {
	store := testutil.NewStore()
	owner := uuid.New()
	router := gin.New()
	router.Use(RecoveryMiddleware())
	router.POST("/sales", asUser(owner), Idempotency(IdempotencyConfig{Repo: store.Idempotency()}), func(c *gin.Context) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "k")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	k, err := store.Idempotency().GetByKey(context.Background(), "k", owner)
	require.NoError(t, err)
	assert.Nil(t, k)
}

func TestRecoveryMiddleware_WritesErrorBody(t *testing.T) {
	router := gin.New()
	router.Use(RecoveryMiddleware())
	router.GET("/boom", func(*gin.Context) { panic("nil map") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestTimezoneMiddleware(t *testing.T) {
	var got *time.Location
	router := gin.New()
	router.GET("/", TimezoneMiddleware(nil), func(c *gin.Context) {
		got = c.MustGet(LocationKey).(*time.Location)
		c.Status(http.StatusOK)
	})

	serve := func(target, header string) int {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if header != "" {
			req.Header.Set(TimezoneHeader, header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusOK, serve("/", ""))
	assert.Equal(t, time.UTC, got)

	require.Equal(t, http.StatusOK, serve("/", "Africa/Nairobi"))
	assert.Equal(t, "Africa/Nairobi", got.String())

	require.Equal(t, http.StatusOK, serve("/?tz=Asia/Tokyo", "Africa/Nairobi"))
	assert.Equal(t, "Asia/Tokyo", got.String())

	assert.Equal(t, http.StatusBadRequest, serve("/", "Nowhere/Special"))
}

func TestAccountRateLimiter_Cleanup(t *testing.T) {
	rl := NewAccountRateLimiter(RateLimiterConfig{RequestsPerSecond: 1, BurstSize: 1, CleanupInterval: time.Hour, EntryTTL: time.Minute})
	defer rl.Stop()

	rl.getLimiter(uuid.New())
	rl.getLimiter(uuid.New())
	require.Equal(t, 2, rl.ActiveAccounts())

	rl.cleanup(time.Now())
	assert.Equal(t, 2, rl.ActiveAccounts())

	rl.cleanup(time.Now().Add(2 * time.Minute))
	assert.Equal(t, 0, rl.ActiveAccounts())
}
