package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"projectdesk/model"
	"projectdesk/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
}

func setup(t *testing.T) (*gin.Engine, *services.TokenService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:middleware%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.PersonalAccessToken{}))

	tokens := services.NewTokenService(db, "secret", time.Hour)
	r := gin.New()
	r.GET("/me", AccessTokenMiddleware(tokens), func(c *gin.Context) {
		p := CurrentPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"id": p.ID, "role": p.Role})
	})
	return r, tokens, db
}

func get(r http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAccessTokenMiddleware(t *testing.T) {
	r, tokens, db := setup(t)
	u := &model.User{Username: "ann", Email: "ann@example.test", Password: "x", Role: model.RoleTeamMember}
	require.NoError(t, db.Create(u).Error)
	raw, err := tokens.Issue(context.Background(), u, "auth_token")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Token "+raw).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer nope").Code)

	w := get(r, "Bearer "+raw)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"role":"team_member"}`, u.ID), w.Body.String())
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2)
	now := time.Now()

	assert.True(t, rl.allow("1.1.1.1", now))
	assert.True(t, rl.allow("1.1.1.1", now))
	assert.False(t, rl.allow("1.1.1.1", now))
	assert.True(t, rl.allow("2.2.2.2", now), "buckets are per IP")
	assert.True(t, rl.allow("1.1.1.1", now.Add(31*time.Second)), "refills over time")

	r := gin.New()
	r.POST("/login", NewRateLimiter(1).Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })
	codes := make([]int, 2)
	for i := range codes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}
