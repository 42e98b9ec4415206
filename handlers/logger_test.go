package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGetLoggerTagsCheckoutSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("logger", zap.New(core))
		c.Next()
	})
	hit := func(c *gin.Context) {
		getLogger(c).Info("hit")
		c.Status(http.StatusNoContent)
	}
	r.GET("/api/checkout/sessions/:id", hit)
	r.GET("/api/orders/:id", hit)

	for _, path := range []string{"/api/checkout/sessions/s1", "/api/orders/order_1"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	if got := entries[0].ContextMap()["sessionID"]; got != "s1" {
		t.Fatalf("checkout entry sessionID = %v", got)
	}
	if _, ok := entries[1].ContextMap()["sessionID"]; ok {
		t.Fatal("order route tagged with a checkout session")
	}
}
