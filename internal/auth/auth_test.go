package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokens() TokenService {
	return TokenService{Secret: []byte("test-secret"), Issuer: "loremaker", Duration: time.Hour}
}

func TestSignAndParse(t *testing.T) {
	ts := testTokens()
	tok, exp, err := ts.Sign("ops", RoleAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := ts.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)

	other := ts
	other.Secret = []byte("another")
	_, err = other.Parse(tok)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	ts := testTokens()
	ts.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, _, err := ts.Sign("ops", RoleAdmin)
	require.NoError(t, err)

	_, err = testTokens().Parse(tok)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ts := testTokens()
	r := gin.New()
	r.GET("/admin", AuthMiddleware(ts, RoleAdmin), func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		require.True(t, ok)
		c.String(http.StatusOK, claims.Subject)
	})

	admin, _, err := ts.Sign("ops", RoleAdmin)
	require.NoError(t, err)
	viewer, _, err := ts.Sign("guest", "viewer")
	require.NoError(t, err)

	cases := []struct {
		header string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer nope", http.StatusUnauthorized},
		{"Basic " + admin, http.StatusUnauthorized},
		{"Bearer ", http.StatusUnauthorized},
		{"Bearer " + viewer, http.StatusForbidden},
		{"Bearer " + admin, http.StatusOK},
		{"bearer  " + admin, http.StatusOK},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.status, w.Code, tc.header)
	}
}

func TestTokenServiceRequiresSecret(t *testing.T) {
	_, _, err := TokenService{Duration: time.Hour}.Sign("ops", RoleAdmin)
	assert.ErrorIs(t, err, ErrNoSecret)

	_, err = TokenService{}.Parse("x.y.z")
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestParseRejectsOtherIssuer(t *testing.T) {
	other := testTokens()
	other.Issuer = "someone-else"
	tok, _, err := other.Sign("ops", RoleAdmin)
	require.NoError(t, err)

	_, err = testTokens().Parse(tok)
	assert.Error(t, err)
}
