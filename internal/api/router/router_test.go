package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"washman/backend/config"
	"washman/backend/internal/api/handler"
	"washman/backend/internal/cache"
	"washman/backend/internal/repository"
	"washman/backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupEngine(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{CORS: config.CORSConfig{AllowOrigins: []string{"http://localhost:5173"}}},
		Scheduler: config.SchedulerConfig{
			Timezone:                 "UTC",
			ScheduleCacheTTL:         30 * time.Second,
			RulesCacheTTL:            5 * time.Minute,
			BiWeeklyUnknownAfterDays: 21,
		},
	}
	svc := service.NewService(&cfg.Scheduler, &repository.Repository{}, cache.NewMemoryCache(nil), zap.NewNop())
	return Setup(cfg, handler.NewHandler(svc), nil, zap.NewNop())
}

func TestSetup_Routes(t *testing.T) {
	r := setupEngine(t)

	want := map[string]bool{
		"POST /api/v1/schedule/assign/:weekOffset":                   false,
		"GET /api/v1/schedule/assign/current":                        false,
		"POST /api/v1/schedule/assign/manual":                        false,
		"PUT /api/v1/schedule/assign/update-task":                    false,
		"DELETE /api/v1/schedule/assign/task/:taskId":                false,
		"POST /api/v1/schedule/assign/task/:taskId/complete":         false,
		"DELETE /api/v1/schedule/assign":                             false,
		"POST /api/v1/schedule/assign/sync-new-customers":            false,
		"GET /api/v1/schedule/assign/export":                         false,
		"GET /api/v1/schedule/assign/workers/:workerId/calendar.ics": false,
		"GET /api/v1/wash-rules":                                     false,
		"PUT /api/v1/wash-rules/:name":                               false,
		"GET /health":                                                false,
	}
	for _, route := range r.Routes() {
		key := route.Method + " " + route.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for key, found := range want {
		if !found {
			t.Errorf("缺少路由 %s", key)
		}
	}
}

func TestSetup_Health(t *testing.T) {
	r := setupEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("响应应携带 X-Request-ID")
	}
}

func TestSetup_BadWeekOffset(t *testing.T) {
	r := setupEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/schedule/assign/abc", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
