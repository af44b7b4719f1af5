package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRateKeyUsesClientAddress(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/rooms", nil)
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.7")
	c := e.NewContext(req, httptest.NewRecorder())

	assert.Equal(t, "rl:ip:203.0.113.7", rateKey("rl", c))

	// The limiter runs before authentication, so a signed-in caller is
	// still bucketed by address.
	c.Set(CtxUserID, uint64(42))
	assert.Equal(t, "rl:ip:203.0.113.7", rateKey("rl", c))
}
