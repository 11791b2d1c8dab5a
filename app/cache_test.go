package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func fetchWithToken(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", token)
	r.ServeHTTP(w, req)

	return w
}

// The stats and labels URIs are identical for every caller, so the cache key
// must include the credential or one tenant gets another tenant's body.
func TestUserCacheIsolatesTenants(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/stats", cacheForUser(30), func(c *gin.Context) {
		c.String(http.StatusOK, "stats-for-"+c.GetHeader("Authorization"))
	})

	first := fetchWithToken(r, "/stats", "Bearer user-a")
	require.Equal(t, "stats-for-Bearer user-a", first.Body.String())

	other := fetchWithToken(r, "/stats", "Bearer user-b")
	require.Equal(t, "stats-for-Bearer user-b", other.Body.String())

	// Repeat hits stay scoped to their own caller
	again := fetchWithToken(r, "/stats", "Bearer user-a")
	require.Equal(t, "stats-for-Bearer user-a", again.Body.String())
}

func TestUserCacheServesRepeatRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hits := 0
	r := gin.New()
	r.GET("/labels", cacheForUser(30), func(c *gin.Context) {
		hits++
		c.String(http.StatusOK, "labels")
	})

	fetchWithToken(r, "/labels", "Bearer user-a")
	fetchWithToken(r, "/labels", "Bearer user-a")

	require.Equal(t, 1, hits)
}
