package rest_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"learnsol-identity/pkg/logger"
	"learnsol-identity/pkg/rest"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func quietLogger() *logger.Logger {
	return logger.NewFromConfig(logger.LoggerConfig{LogLevel: zerolog.Disabled})
}

func ok(body string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, body) }
}

func TestHttpMethodString(t *testing.T) {
	tests := []struct {
		method   rest.HttpMethod
		expected string
	}{
		{rest.GET, "GET"},
		{rest.POST, "POST"},
		{rest.PUT, "PUT"},
		{rest.PATCH, "PATCH"},
		{rest.DELETE, "DELETE"},
		{rest.HttpMethod(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.method.String(); got != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, got)
		}
	}
}

func TestRegisterRoutesGroups(t *testing.T) {
	engine := gin.New()
	rest.RegisterRoutes(engine, quietLogger(), nil, []rest.Route{
		rest.NewRoute(rest.POST, "auth", "nonce", ok("nonce")),
		rest.NewRoute(rest.GET, "auth", "wallet", ok("wallet")),
		rest.NewRoute(rest.GET, "", "health", ok("health")),
	})

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodPost, "/auth/nonce", http.StatusOK, "nonce"},
		{http.MethodGet, "/auth/wallet", http.StatusOK, "wallet"},
		{http.MethodGet, "/health", http.StatusOK, "health"},
		{http.MethodGet, "/auth/nonce", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestRouteWithGuard(t *testing.T) {
	guard := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}

	engine := gin.New()
	rest.RegisterRoutes(engine, quietLogger(), nil, []rest.Route{
		rest.NewRoute(rest.GET, "auth", "wallet", ok("wallet")).With(guard),
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/wallet", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/auth/wallet", nil)
	req.Header.Set("Authorization", "Bearer token")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouteWithDoesNotMutateOriginal(t *testing.T) {
	base := rest.NewRoute(rest.GET, "auth", "wallet", ok("wallet"))

	guarded := base.With(ok("guard"))

	assert.Len(t, base.Handlers(), 1)
	assert.Len(t, guarded.Handlers(), 2)
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	engine := gin.New()
	rest.RegisterRoutes(engine, quietLogger(),
		[]rest.Middleware{rest.NewMiddleware(rest.AllGroups, rest.RequestIDMiddleware())},
		[]rest.Route{rest.NewRoute(rest.GET, "", "health", func(c *gin.Context) {
			seen, _ = c.Request.Context().Value(logger.RequestIDKey).(string)
			c.Status(http.StatusOK)
		})},
	)

	t.Run("propagates incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(rest.RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()

		engine.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(rest.RequestIDHeader))
		assert.Equal(t, "abc-123", seen)
	})

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()

		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		generated := w.Header().Get(rest.RequestIDHeader)
		assert.Len(t, generated, 36)
		assert.Equal(t, generated, seen)
	})
}

func TestGroupMiddlewareScope(t *testing.T) {
	marker := func(c *gin.Context) {
		c.Header("X-Auth-Group", "yes")
		c.Next()
	}

	engine := gin.New()
	rest.RegisterRoutes(engine, quietLogger(),
		[]rest.Middleware{rest.NewMiddleware("auth", marker)},
		[]rest.Route{
			rest.NewRoute(rest.GET, "auth", "wallet", ok("wallet")),
			rest.NewRoute(rest.GET, "", "health", ok("health")),
		},
	)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/wallet", nil))
	assert.Equal(t, "yes", w.Header().Get("X-Auth-Group"))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, w.Header().Get("X-Auth-Group"))
}
