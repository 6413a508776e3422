package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/medagenda/scheduler-api/pkg/httputil"
)

func TestRateLimitRespondsWithEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Limit(1), Burst: 1})
	router := gin.New()
	router.Use(rl.RateLimit())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	// The bucket holds a single token, so the immediate second request
	// is throttled.
	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, http.StatusText(http.StatusTooManyRequests), resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Message)
}
