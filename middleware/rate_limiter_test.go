package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func requestFrom(t *testing.T, remoteAddr string, headers map[string]string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = remoteAddr
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}
	return c
}

func TestClientIP_TrustsOnlyRightmostForwardedHop(t *testing.T) {
	c := requestFrom(t, "127.0.0.1:1234", map[string]string{
		"X-Forwarded-For": "6.6.6.6, 10.0.0.9, 172.16.0.3",
	})
	assert.Equal(t, "172.16.0.3", clientIP(c))
}

func TestClientIP_FallsBackToRealIPThenRemoteAddr(t *testing.T) {
	c := requestFrom(t, "127.0.0.1:1234", map[string]string{"X-Real-IP": "5.6.7.8"})
	assert.Equal(t, "5.6.7.8", clientIP(c))

	c = requestFrom(t, "9.9.9.9:443", nil)
	assert.Equal(t, "9.9.9.9", clientIP(c))
}
