package router

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpmiddleware "github.com/wolfman30/telehealth-ussd/internal/http/middleware"
	"github.com/wolfman30/telehealth-ussd/internal/localization"
	"github.com/wolfman30/telehealth-ussd/internal/records"
	"github.com/wolfman30/telehealth-ussd/internal/ussd"
	"github.com/wolfman30/telehealth-ussd/pkg/logging"
)

const adminSecret = "test-secret"

func newTestRouter(t *testing.T, rps float64) http.Handler {
	t.Helper()
	logger := logging.Default()
	catalog := localization.MustCatalog()
	router := ussd.NewRouter(ussd.RouterConfig{
		Records: records.NewSeededMemoryStore(),
		Catalog: catalog,
		Logger:  logger,
	})
	svc := ussd.NewService(ussd.ServiceConfig{
		Sessions: ussd.NewMemorySessionStore(nil),
		Router:   router,
		Catalog:  catalog,
		Logger:   logger,
	})
	return New(&Config{
		Logger:          logger,
		USSDHandler:     ussd.NewHandler(svc, nil, logger),
		AdminAuthSecret: adminSecret,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		}),
		RateLimitRPS:   rps,
		RateLimitBurst: 2,
	})
}

func dial(t *testing.T, h http.Handler, phone, text string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"sessionId": {"ATUid_router"}, "serviceCode": {"*384#"}, "phoneNumber": {phone}, "text": {text}}
	req := httptest.NewRequest(http.MethodPost, "/ussd", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func adminToken(t *testing.T) string {
	t.Helper()
	claims := httpmiddleware.AdminClaims{
		Scope: httpmiddleware.AdminScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ops",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(adminSecret))
	require.NoError(t, err)
	return signed
}

func TestRouterHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t, 0)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(httpmiddleware.RequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, "# metrics", rec.Body.String())
}

func TestRouterUSSDCallback(t *testing.T) {
	h := newTestRouter(t, 0)

	rec := dial(t, h, "+254711001122", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "CON "))

	rec = dial(t, h, "+254711001122", "1")
	assert.Contains(t, rec.Body.String(), "Welcome back, Jane Wanjiku")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ussd", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouterRateLimitsByPhone(t *testing.T) {
	h := newTestRouter(t, 0.001)

	assert.Equal(t, http.StatusOK, dial(t, h, "+254711001122", "").Code)
	assert.Equal(t, http.StatusOK, dial(t, h, "+254711001122", "1").Code)
	assert.Equal(t, http.StatusTooManyRequests, dial(t, h, "+254711001122", "1*1").Code)
	assert.Equal(t, http.StatusOK, dial(t, h, "+254722334455", "").Code)
}

func TestRouterAdminRequiresToken(t *testing.T) {
	h := newTestRouter(t, 0)
	dial(t, h, "+254711001122", "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/sessions/ATUid_router", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/sessions/ATUid_router", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"select_language"`)

	req = httptest.NewRequest(http.MethodDelete, "/admin/sessions/ATUid_router", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
