package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/invoicecapture-backend/internal/access"
	"github.com/angelmondragon/invoicecapture-backend/internal/analytics"
	"github.com/angelmondragon/invoicecapture-backend/internal/invoices"
	"github.com/angelmondragon/invoicecapture-backend/internal/users"
	pkgAuth "github.com/angelmondragon/invoicecapture-backend/pkg/auth"
	"github.com/angelmondragon/invoicecapture-backend/pkg/config"
	"github.com/angelmondragon/invoicecapture-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/invoicecapture-backend/pkg/errors"
	"github.com/angelmondragon/invoicecapture-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

// stubUserService resolves every token subject to a profile with the role registered for it.
type stubUserService struct {
	roles map[uuid.UUID]enums.UserRole
}

func (s stubUserService) Profile(ctx context.Context, id uuid.UUID) (*access.Profile, error) {
	role, ok := s.roles[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile not found")
	}
	return &access.Profile{ID: id, Email: "agent@madec.co.ma", Role: role}, nil
}

func (s stubUserService) ValidateSignup(input users.SignupInput) (*users.SignupResult, error) {
	return users.ValidateSignup(input, users.DefaultSignupDomain)
}

type stubInvoiceService struct {
	invoices.Service
}

func (stubInvoiceService) Preview(ctx context.Context, input invoices.ReviewInput) (*invoices.InvoiceData, error) {
	return &input.Data, nil
}

func (stubInvoiceService) List(ctx context.Context, params invoices.ListParams) (*invoices.ListResult, error) {
	return &invoices.ListResult{Items: []invoices.Invoice{}}, nil
}

type stubAnalyticsService struct {
	analytics.Service
}

func (stubAnalyticsService) Summary(ctx context.Context) (analytics.Summary, error) {
	return analytics.Summary{Total: 1}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer", Audience: "authenticated"},
	}
}

type testRouter struct {
	handler http.Handler
	users   stubUserService
}

func newTestRouter(cfg *config.Config) *testRouter {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	userService := stubUserService{roles: map[uuid.UUID]enums.UserRole{}}
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	handler := NewRouter(
		cfg,
		logg,
		stubPinger{}, // db.Pinger
		nil,          // RedisStore
		stubPinger{}, // gcs.Pinger
		metrics,
		userService,
		stubInvoiceService{},
		stubAnalyticsService{},
		nil,
		nil,
	)
	return &testRouter{handler: handler, users: userService}
}

func (tr *testRouter) token(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	userID := uuid.New()
	tr.users.roles[userID] = role
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: userID})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func (tr *testRouter) do(req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	tr.handler.ServeHTTP(resp, req)
	return resp
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	router := newTestRouter(testConfig())

	if resp := router.do(httptest.NewRequest(http.MethodGet, "/health/live", nil)); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live got %d", resp.Code)
	}
	if resp := router.do(httptest.NewRequest(http.MethodGet, "/health/ready", nil)); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for ready got %d", resp.Code)
	}
	resp := router.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "# metrics") {
		t.Fatalf("expected metrics handler, got %d %s", resp.Code, resp.Body.String())
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := router.do(httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsUnknownProfile(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if resp := router.do(req); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown profile got %d", resp.Code)
	}
}

func TestUserCanListOwnInvoices(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
	req.Header.Set("Authorization", "Bearer "+router.token(t, cfg, enums.UserRoleUser))
	if resp := router.do(req); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAnalyticsRequiresAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	user := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/summary", nil)
	user.Header.Set("Authorization", "Bearer "+router.token(t, cfg, enums.UserRoleUser))
	if resp := router.do(user); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/summary", nil)
	admin.Header.Set("Authorization", "Bearer "+router.token(t, cfg, enums.UserRoleAdmin))
	if resp := router.do(admin); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestReviewRoutesRequireAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	id := uuid.New().String()

	status := httptest.NewRequest(http.MethodPatch, "/api/v1/invoices/"+id+"/status", strings.NewReader(`{"status":"approved"}`))
	status.Header.Set("Authorization", "Bearer "+router.token(t, cfg, enums.UserRoleUser))
	if resp := router.do(status); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for status update by user got %d", resp.Code)
	}

	export := httptest.NewRequest(http.MethodGet, "/api/v1/exports/invoices.xlsx", nil)
	export.Header.Set("Authorization", "Bearer "+router.token(t, cfg, enums.UserRoleUser))
	if resp := router.do(export); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for export by user got %d", resp.Code)
	}
}

func TestPreviewIsOpenToCapturers(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/preview", strings.NewReader(`{"data":{"store_name":"Marjane","line_items":[]}}`))
	req.Header.Set("Authorization", "Bearer "+router.token(t, cfg, enums.UserRoleUser))
	if resp := router.do(req); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for preview got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestSignupValidateIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())

	bad := httptest.NewRequest(http.MethodPost, "/api/public/signup/validate", strings.NewReader("{"))
	if resp := router.do(bad); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}

	good := httptest.NewRequest(http.MethodPost, "/api/public/signup/validate", strings.NewReader(`{"email":"zed@madec.co.ma","name":"Zed","city":"Fes"}`))
	if resp := router.do(good); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid payload got %d", resp.Code)
	}
}
