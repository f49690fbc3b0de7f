package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "finboard/internal/errors"
	"finboard/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doRequest(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func whoAmI(c *gin.Context) {
	uid, ok := c.Get(userIDKey)
	c.JSON(http.StatusOK, gin.H{"authenticated": ok, "user_id": uid})
}

func bearer(t *testing.T, userID uint, ttl time.Duration) map[string]string {
	t.Helper()
	token, err := GenerateAccessToken(userID, "user@test.com", ttl)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/me", AuthMiddleware(), whoAmI)

	t.Run("valid_token", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/me", bearer(t, 42, time.Hour))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(42), parseBody(t, rec)["user_id"])
	})

	t.Run("missing_header", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/me", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Authorization header is required", parseBody(t, rec)["error"])
	})

	t.Run("malformed_header", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/me", map[string]string{"Authorization": "Token abc"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired_token", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/me", bearer(t, 42, -time.Minute))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong_signature", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{UserID: 1, TokenType: "access"})
		signed, err := token.SignedString([]byte("some-other-secret"))
		require.NoError(t, err)
		rec := doRequest(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + signed})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refresh_token_rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{
			UserID:    1,
			TokenType: "refresh",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		signed, err := token.SignedString(getJWTKey())
		require.NoError(t, err)
		rec := doRequest(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + signed})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestOptionalAuth(t *testing.T) {
	r := gin.New()
	r.GET("/me", OptionalAuth(), whoAmI)

	t.Run("anonymous", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/me", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, false, parseBody(t, rec)["authenticated"])
	})

	t.Run("authenticated", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/me", bearer(t, 7, time.Hour))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(7), parseBody(t, rec)["user_id"])
	})

	t.Run("invalid_token_is_anonymous", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer garbage"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, false, parseBody(t, rec)["authenticated"])
	})
}

func TestAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name          string
		configuredKey string
		headers       map[string]string
		wantStatus    int
	}{
		{"disabled_when_unconfigured", "", nil, http.StatusOK},
		{"valid_header", "scrape-key", map[string]string{"X-API-Key": "scrape-key"}, http.StatusOK},
		{"valid_bearer", "scrape-key", map[string]string{"Authorization": "Bearer scrape-key"}, http.StatusOK},
		{"wrong_key", "scrape-key", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"missing_key", "scrape-key", nil, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/metrics", APIKeyAuth(tt.configuredKey), func(c *gin.Context) { c.String(http.StatusOK, "ok") })

			rec := doRequest(r, http.MethodGet, "/metrics", tt.headers)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				errObj := parseBody(t, rec)["error"].(map[string]interface{})
				assert.Equal(t, "INVALID_API_KEY", errObj["code"])
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/app", func(c *gin.Context) {
		_ = c.Error(apperrors.Wrap(apperrors.ErrQuoteUnavailable, errors.New("upstream 404")))
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("db gone"))
	})

	rec := doRequest(r, http.MethodGet, "/app", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	errObj := parseBody(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, "QUOTE_UNAVAILABLE", errObj["code"])

	rec = doRequest(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	errObj = parseBody(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, "INTERNAL_ERROR", errObj["code"])
	assert.NotContains(t, rec.Body.String(), "db gone")
}

func TestErrorHandler_BindAndWritten(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/bind", func(c *gin.Context) {
		_ = c.Error(errors.New("quantity: invalid character")).SetType(gin.ErrorTypeBind)
	})
	r.GET("/written", func(c *gin.Context) {
		c.JSON(http.StatusConflict, gin.H{"error": gin.H{"code": "HANDLED"}})
		_ = c.Error(errors.New("already reported"))
	})
	r.NoRoute(NoRoute)

	rec := doRequest(r, http.MethodGet, "/bind", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errObj := parseBody(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_INPUT", errObj["code"])
	assert.NotContains(t, rec.Body.String(), "invalid character")

	rec = doRequest(r, http.MethodGet, "/written", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	errObj = parseBody(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, "HANDLED", errObj["code"])

	rec = doRequest(r, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	errObj = parseBody(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, "ROUTE_NOT_FOUND", errObj["code"])
}

func TestRequestLogging(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	rec := doRequest(r, http.MethodGet, "/ping", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	const id = "0190a4b2-7c3e-7d4f-8a1b-2c3d4e5f6a7b"
	rec = doRequest(r, http.MethodGet, "/ping", map[string]string{"X-Request-ID": id})
	assert.Equal(t, id, rec.Header().Get("X-Request-ID"))

	rec = doRequest(r, http.MethodGet, "/ping", map[string]string{"X-Request-ID": "not-a-uuid"})
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get("X-Request-ID"))
}

func TestMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/v1/stocks/:ticker", func(c *gin.Context) { c.Status(http.StatusOK) })

	doRequest(r, http.MethodGet, "/api/v1/stocks/PETR4", nil)
	doRequest(r, http.MethodGet, "/api/v1/stocks/AAPL", nil)
	doRequest(r, http.MethodGet, "/nowhere", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/stocks/:ticker", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}
