package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"storefront/bootstrap"
	"storefront/config"
)

var (
	router  *gin.Engine
	initErr error
	once    sync.Once
)

func initApp() {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)

		cfg := config.LoadConfig()
		logger := config.NewLogger(cfg)

		app, err := bootstrap.New(context.Background(), cfg, logger)
		if err != nil {
			logger.Error("failed to initialise app", "error", err)
			initErr = err
			return
		}
		router = app.Router
	})
}

// Handler is the serverless entry point; the app is built once per instance.
func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	if initErr != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"success":false,"message":"Service unavailable","error":"Service unavailable","data":{}}`))
		return
	}
	router.ServeHTTP(w, r)
}
