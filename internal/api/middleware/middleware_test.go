package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"meal-planner/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDedupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Deduplication(&config.Config{DedupWindow: time.Second}))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	router.POST("/api/v1/shopping/:event_id/items", ok)
	router.POST("/api/v1/shopping/:event_id/save", ok)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDeduplicationRejectsRepeatedPost(t *testing.T) {
	router := setupDedupRouter()

	first := postJSON(router, "/api/v1/shopping/dedup-a/items", `{"name":"Apple"}`)
	second := postJSON(router, "/api/v1/shopping/dedup-a/items", `{"name":"Apple"}`)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestDeduplicationAllowsDifferentBodies(t *testing.T) {
	router := setupDedupRouter()

	first := postJSON(router, "/api/v1/shopping/dedup-b/items", `{"name":"Apple"}`)
	second := postJSON(router, "/api/v1/shopping/dedup-b/items", `{"name":"Milk"}`)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
}

// 批次儲存端點不去重，失敗後的立即重試必須放行
func TestDeduplicationSkipsSaveEndpoint(t *testing.T) {
	router := setupDedupRouter()

	first := postJSON(router, "/api/v1/shopping/dedup-c/save", "")
	second := postJSON(router, "/api/v1/shopping/dedup-c/save", "")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
}

func TestRateLimitExhaustsTokens(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimit(2, time.Minute))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestBodySizeLimitRejectsOversizedRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(BodySizeLimit(16))
	router.POST("/items", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := postJSON(router, "/items", `{"name":"this body is longer than sixteen bytes"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = postJSON(router, "/items", `{"a":1}`)
	assert.Equal(t, http.StatusOK, w.Code)
}
