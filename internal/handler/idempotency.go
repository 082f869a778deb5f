package handler

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-booking/internal/logger"
)

const (
	// IdempotencyKeyHeader carries the client-chosen idempotency key.
	IdempotencyKeyHeader = "Idempotency-Key"

	idempotencyKeyPrefix   = "idempotency:"
	defaultIdempotencyTTL  = 24 * time.Hour
	idempotencyInFlightTTL = 60 * time.Second
)

type idempotencyStatus string

const (
	statusProcessing idempotencyStatus = "processing"
	statusCompleted  idempotencyStatus = "completed"
)

// idempotencyRecord is the state stored per key.
type idempotencyRecord struct {
	Status       idempotencyStatus `json:"status"`
	RequestHash  string            `json:"request_hash"`
	ResponseCode int               `json:"response_code,omitempty"`
	ResponseBody string            `json:"response_body,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// IdempotencyStore is the subset of the Redis client the middleware uses.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Idempotency replays the stored response for a repeated Idempotency-Key.
// Keys are scoped to the authenticated user. A duplicate arriving while the
// first request is still running gets 409; reusing a key for a different
// body gets 422. Requests without the header, and every request while Redis
// is unreachable, pass straight through. Server errors are not stored so the
// client may retry them.
func Idempotency(store IdempotencyStore, ttl time.Duration, log *zap.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	log = logger.OrNop(log)

	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyKeyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
			if err != nil {
				writeErrorMessage(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			ctx := r.Context()
			redisKey := idempotencyKeyPrefix + UserFromContext(ctx).ID + ":" + key
			hash := requestHash(r, body)

			record := &idempotencyRecord{Status: statusProcessing, RequestHash: hash, CreatedAt: time.Now().UTC()}
			acquired, err := setRecordNX(ctx, store, redisKey, record, idempotencyInFlightTTL)
			if err != nil {
				log.Warn("idempotency store unavailable", zap.String("key", key), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if !acquired {
				existing, err := getRecord(ctx, store, redisKey)
				switch {
				case err != nil:
					log.Warn("idempotency store unavailable", zap.String("key", key), zap.Error(err))
					next.ServeHTTP(w, r)
				case existing == nil:
					writeErrorMessage(w, http.StatusConflict, "REQUEST_IN_PROGRESS", "A request with this idempotency key is already being processed")
				case existing.RequestHash != hash:
					writeErrorMessage(w, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED", "Idempotency key already used with a different request")
				case existing.Status == statusProcessing:
					writeErrorMessage(w, http.StatusConflict, "REQUEST_IN_PROGRESS", "A request with this idempotency key is already being processed")
				default:
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set("Idempotent-Replayed", "true")
					w.WriteHeader(existing.ResponseCode)
					_, _ = io.WriteString(w, existing.ResponseBody)
				}
				return
			}

			rw := &capturingWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			// The request context may already be cancelled once the client
			// has its response.
			saveCtx := context.WithoutCancel(ctx)
			if rw.status >= http.StatusInternalServerError {
				if err := store.Del(saveCtx, redisKey).Err(); err != nil {
					log.Warn("release idempotency key failed", zap.String("key", key), zap.Error(err))
				}
				return
			}

			record.Status = statusCompleted
			record.ResponseCode = rw.status
			record.ResponseBody = rw.body.String()
			if err := saveRecord(saveCtx, store, redisKey, record, ttl); err != nil {
				log.Warn("save idempotency record failed", zap.String("key", key), zap.Error(err))
			}
		})
	}
}

func requestHash(r *http.Request, body []byte) string {
	h := sha256.New()
	h.Write([]byte(r.Method))
	h.Write([]byte{0})
	h.Write([]byte(r.URL.Path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func setRecordNX(ctx context.Context, store IdempotencyStore, key string, rec *idempotencyRecord, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return false, err
	}
	return store.SetNX(ctx, key, data, ttl).Result()
}

func saveRecord(ctx context.Context, store IdempotencyStore, key string, rec *idempotencyRecord, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, data, ttl).Err()
}

// getRecord returns nil, nil when the key expired between SETNX and GET.
func getRecord(ctx context.Context, store IdempotencyStore, key string) (*idempotencyRecord, error) {
	data, err := store.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec idempotencyRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// capturingWriter records the status and body written downstream.
type capturingWriter struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func (w *capturingWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}
