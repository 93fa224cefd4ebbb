// Package httpapi exposes the checkout endpoints over HTTP.
package httpapi

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the routes. staticDir, when set, serves the checkout page.
func NewRouter(h *Handler, staticDir string) *gin.Engine {
	r := gin.New()
	r.Use(requestID(), accessLog(), recovery(), limitBody())

	r.GET("/healthz", h.health)

	api := r.Group("/api")
	{
		api.GET("/config", h.config)
		api.GET("/services", h.listServices)
		api.POST("/validate-service", h.validateService)
		api.POST("/validate-custom-amount", h.validateCustomAmount)
		api.POST("/save-transaction", h.recordTransaction)
		api.POST("/record-transaction", h.recordTransaction)
		api.GET("/transactions/:transaction_id", h.getTransaction)
	}

	if staticDir != "" {
		r.StaticFile("/", filepath.Join(staticDir, "index.html"))
		r.Static("/static", staticDir)
	}
	return r
}

func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
