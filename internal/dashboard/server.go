// Package dashboard serves a read-only JSON view of the inventory over
// HTTP. It never writes; all changes go through the bot.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StartOpts holds configuration for the dashboard server.
type StartOpts struct {
	DB                *gorm.DB
	Addr              string // listen address, e.g. "127.0.0.1:8090"
	LowStockThreshold int    // default threshold for /api/lowstock
	Out               io.Writer
}

// Start launches the dashboard HTTP server. It blocks until ctx is cancelled,
// then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("dashboard: db is required")
	}
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:8090"
	}
	if opts.LowStockThreshold <= 0 {
		opts.LowStockThreshold = 2
	}

	router := newRouter(opts.DB, opts.LowStockThreshold)

	srv := &http.Server{
		Addr:    opts.Addr,
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Dashboard running at http://%s\n", opts.Addr)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// newRouter builds the Gin router with all routes registered.
func newRouter(db *gorm.DB, lowStockThreshold int) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	registerRoutes(router, db, lowStockThreshold)
	return router
}
