package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/javajoker/storefront/internal/utils"
)

const testCookie = "storefront_session"

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	utils.SetJWTSecret("middleware-test")
	userID := uuid.New()
	token, err := utils.GenerateSessionToken(userID, "a@b.c", time.Hour)
	require.NoError(t, err)
	expired, err := utils.GenerateSessionToken(userID, "a@b.c", -time.Minute)
	require.NoError(t, err)

	r := gin.New()
	r.Use(I18nMiddleware())
	r.GET("/private", AuthRequired(testCookie), func(c *gin.Context) {
		id, _ := utils.GetUserIDFromContext(c)
		c.String(http.StatusOK, id)
	})

	tests := []struct {
		name   string
		cookie string
		status int
	}{
		{"no cookie", "", http.StatusUnauthorized},
		{"garbage", "nope", http.StatusUnauthorized},
		{"expired", expired, http.StatusUnauthorized},
		{"valid", token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: testCookie, Value: tt.cookie})
			}
			w := serve(r, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, userID.String(), w.Body.String())
			}
		})
	}
}

func TestAuthRequiredTranslatesMessage(t *testing.T) {
	r := gin.New()
	r.Use(I18nMiddleware())
	r.GET("/private", AuthRequired(testCookie), func(c *gin.Context) {})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9")
	w := serve(r, req)

	var body utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "需要登入", body.Message)
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
}

func TestOptionalAuth(t *testing.T) {
	r := gin.New()
	r.GET("/maybe", OptionalAuth(testCookie), func(c *gin.Context) {
		_, ok := utils.GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"signed_in": ok})
	})

	req := httptest.NewRequest(http.MethodGet, "/maybe", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "garbage"})
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"signed_in":false}`, w.Body.String())
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(rate.Every(time.Hour), 2)
	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// a different client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)
}

func TestRateLimiterEvictsIdleVisitors(t *testing.T) {
	limiter := NewRateLimiter(rate.Inf, 0)
	limiter.getVisitor("10.0.0.1")

	limiter.evict(time.Now())
	assert.Len(t, limiter.visitors, 1)

	limiter.evict(time.Now().Add(limiter.ttl + time.Second))
	assert.Empty(t, limiter.visitors)

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		limiter.Cleanup(done)
		close(finished)
	}()
	close(done)
	<-finished
}

func TestRequestLogger(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := serve(r, req)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "req-1", entry.Data["request_id"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])

	w = serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
