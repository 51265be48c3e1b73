package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"printshop/internal/order/controller"
)

func NewRouter(orderCtrl *controller.OrderController, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/api/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"pong":true}`))
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", orderCtrl.CreateOrder)
		r.Get("/", orderCtrl.GetAllOrders)
		r.Post("/import", orderCtrl.ImportOrders)
		r.Get("/{orderId}", orderCtrl.GetOrder)
		r.Put("/{orderId}", orderCtrl.UpdateOrder)
		r.Delete("/{orderId}", orderCtrl.DeleteOrder)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
