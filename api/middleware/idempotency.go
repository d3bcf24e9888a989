package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/invoicecapture-backend/api/responses"
	"github.com/angelmondragon/invoicecapture-backend/api/validators"
	pkgerrors "github.com/angelmondragon/invoicecapture-backend/pkg/errors"
	"github.com/angelmondragon/invoicecapture-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/invoicecapture-backend/pkg/redis"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	// pendingRecordTTL bounds how long a crashed request can hold its key.
	pendingRecordTTL = 2 * time.Minute

	idempotencyHeader = "Idempotency-Key"
)

// idempotentRoutes maps "METHOD pattern" to how long a completed response is replayable.
var idempotentRoutes = map[string]time.Duration{
	http.MethodPost + " /api/v1/invoices": defaultIdempotencyTTL,
}

// storedResponse is the redis value kept under an idempotency key.
// A pending entry marks a request that is still executing.
type storedResponse struct {
	Pending     bool   `json:"pending,omitempty"`
	Fingerprint string `json:"fingerprint"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Idempotency makes invoice creation safe to retry. The first request with a key
// reserves it, and later requests with the same key and body replay the stored response.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, ok := routeTTL(r.Method, routePattern(r))
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if clientKey == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, idempotencyHeader+" header required"))
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, validators.MaxJSONBodyBytes))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "request body too large").
						WithDetails(map[string]any{"max_bytes": tooLarge.Limit}))
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			guard := &idempotencyGuard{
				store:       store,
				logg:        logg,
				key:         store.IdempotencyKey(UserIDFromContext(ctx)+"|"+r.Method+"|"+r.URL.Path, clientKey),
				fingerprint: fingerprint(body),
			}

			reserved, err := guard.reserve(r)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if !reserved {
				guard.replay(w, r)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			if capture.statusCode() >= http.StatusInternalServerError {
				// let the client retry with the same key
				guard.release(r)
				return
			}
			guard.commit(r, capture, ttl)
		})
	}
}

type idempotencyGuard struct {
	store       pkgredis.IdempotencyStore
	logg        *logger.Logger
	key         string
	fingerprint string
}

func (g *idempotencyGuard) reserve(r *http.Request) (bool, error) {
	payload, err := json.Marshal(storedResponse{Pending: true, Fingerprint: g.fingerprint})
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode idempotency record")
	}
	ok, err := g.store.SetNX(r.Context(), g.key, string(payload), pendingRecordTTL)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key")
	}
	return ok, nil
}

func (g *idempotencyGuard) replay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	inProgress := pkgerrors.New(pkgerrors.CodeConflict, "request with this idempotency key is still in progress")

	raw, err := g.store.Get(ctx, g.key)
	switch {
	case errors.Is(err, redis.Nil):
		// reservation expired or was released between SetNX and Get
		responses.WriteError(ctx, g.logg, w, inProgress)
		return
	case err != nil:
		responses.WriteError(ctx, g.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
		return
	}

	var stored storedResponse
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		responses.WriteError(ctx, g.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	if stored.Fingerprint != g.fingerprint {
		responses.WriteError(ctx, g.logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return
	}
	if stored.Pending {
		responses.WriteError(ctx, g.logg, w, inProgress)
		return
	}

	if stored.ContentType != "" {
		w.Header().Set("Content-Type", stored.ContentType)
	}
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}

func (g *idempotencyGuard) release(r *http.Request) {
	if err := g.store.Del(r.Context(), g.key); err != nil && g.logg != nil {
		g.logg.Error(r.Context(), "release idempotency key", err)
	}
}

func (g *idempotencyGuard) commit(r *http.Request, capture *responseCapture, ttl time.Duration) {
	payload, err := json.Marshal(storedResponse{
		Fingerprint: g.fingerprint,
		Status:      capture.statusCode(),
		ContentType: capture.Header().Get("Content-Type"),
		Body:        capture.body.Bytes(),
	})
	if err == nil {
		err = g.store.Set(r.Context(), g.key, string(payload), ttl)
	}
	if err != nil && g.logg != nil {
		g.logg.Error(r.Context(), "persist idempotency record", err)
	}
}

func fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func routeTTL(method, pattern string) (time.Duration, bool) {
	if len(pattern) > 1 {
		pattern = strings.TrimSuffix(pattern, "/")
	}
	ttl, ok := idempotentRoutes[method+" "+pattern]
	return ttl, ok
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

func (c *responseCapture) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}
