package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/godi-api/internal/domain/entity"
	"github.com/sangkips/godi-api/internal/domain/repository"
	"github.com/sangkips/godi-api/internal/presentation/http/dto/response"
	"github.com/sangkips/godi-api/pkg/logger"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
	// IdempotencyPendingTTL bounds how long an unfinished request holds its key
	IdempotencyPendingTTL = time.Minute

	maxIdempotencyKeyLength = 255
	idempotencySaveBudget   = 5 * time.Second
	idempotencyInProgress   = "A request with this Idempotency-Key is already in progress"
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	Now  func() time.Time
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response when a POST is retried with the same key.
// The key is reserved while the request runs, so a concurrent retry gets 409 instead of
// being processed twice. Only 2xx responses are stored; a failed attempt releases the key
// and can be retried. Reusing a key with a different body is rejected.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	now := config.Now
	if now == nil {
		now = time.Now
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}
		if len(idempotencyKey) > maxIdempotencyKeyLength {
			response.AbortWithError(c, http.StatusBadRequest, "Idempotency-Key is too long")
			return
		}

		userIDValue, exists := c.Get(UserIDKey)
		if !exists {
			c.Next()
			return
		}
		userID, ok := userIDValue.(uuid.UUID)
		if !ok {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.AbortWithError(c, http.StatusBadRequest, "Invalid request body")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		sum := sha256.Sum256(body)
		requestHash := hex.EncodeToString(sum[:])

		existing, err := config.Repo.GetByKey(c.Request.Context(), idempotencyKey, userID)
		if err != nil {
			logger.Warn(c.Request.Context()).Err(err).Msg("idempotency lookup failed; processing request normally")
			c.Next()
			return
		}

		if existing != nil && !existing.IsExpired(now()) {
			switch {
			case existing.RequestHash != "" && existing.RequestHash != requestHash:
				response.AbortWithError(c, http.StatusUnprocessableEntity, "Idempotency-Key was already used with a different request")
			case existing.IsPending():
				response.AbortWithError(c, http.StatusConflict, idempotencyInProgress)
			default:
				c.Header("X-Idempotency-Replayed", "true")
				c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
				c.Abort()
			}
			return
		}

		endpoint := c.Request.Method + " " + c.FullPath()
		started := now()
		reserved, err := config.Repo.Reserve(c.Request.Context(), &entity.IdempotencyKey{
			Key:         idempotencyKey,
			UserID:      userID,
			Endpoint:    endpoint,
			RequestHash: requestHash,
			CreatedAt:   started,
			ExpiresAt:   started.Add(IdempotencyPendingTTL),
		})
		switch {
		case err != nil:
			logger.Warn(c.Request.Context()).Err(err).Msg("idempotency key not reserved; processing request normally")
		case !reserved:
			response.AbortWithError(c, http.StatusConflict, idempotencyInProgress)
			return
		}

		// Responses are persisted after the handler returns, even if the client has gone away.
		detached := context.WithoutCancel(c.Request.Context())

		succeeded := false
		if reserved {
			// Runs on failure and on panic so the key can be retried.
			defer func() {
				if succeeded {
					return
				}
				ctx, cancel := context.WithTimeout(detached, idempotencySaveBudget)
				defer cancel()
				if err := config.Repo.Release(ctx, idempotencyKey, userID); err != nil {
					logger.Warn(detached).Err(err).Msg("idempotency key not released")
				}
			}()
		}

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		succeeded = true

		stored := now()
		ikey := &entity.IdempotencyKey{
			Key:          idempotencyKey,
			UserID:       userID,
			Endpoint:     endpoint,
			RequestHash:  requestHash,
			ResponseCode: status,
			ResponseBody: blw.body.String(),
			CreatedAt:    stored,
			ExpiresAt:    stored.Add(IdempotencyKeyTTL),
		}

		ctx, cancel := context.WithTimeout(detached, idempotencySaveBudget)
		defer cancel()
		if err := config.Repo.Save(ctx, ikey); err != nil {
			logger.Warn(detached).Err(err).Msg("idempotency key not stored")
		}
	}
}
