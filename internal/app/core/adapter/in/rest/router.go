package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/usecase"
)

// NewRouter 建立 REST 路由
//
// 參數:
//
//	core: usecase.Ledger - 帳本服務
//	logger: *zap.Logger - 請求日誌
//	base: string - 路由前綴，例如 "/api"；空字串表示掛在根目錄
func NewRouter(core usecase.Ledger, logger *zap.Logger, base string) http.Handler {
	h := &Handler{core: core, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{"Location"},
		MaxAge:         300,
	}))
	r.NotFound(h.notFound)
	r.MethodNotAllowed(h.notFound)

	api := chi.NewRouter()
	api.NotFound(h.notFound)
	api.MethodNotAllowed(h.notFound)
	api.Route("/accounts", func(r chi.Router) {
		r.Post("/", h.createAccount)
		r.Get("/", h.searchAccounts)
		r.Route("/{accountId}", func(r chi.Router) {
			r.Get("/", h.getAccount)
			r.Post("/transactions", h.recordTransaction)
			r.Get("/transactions", h.queryTransactions)
			r.Get("/transactions/{actId}", h.getTransaction)
			r.Get("/statement", h.statement)
		})
	})

	if base == "" || base == "/" {
		r.Mount("/", api)
	} else {
		r.Mount(base, api)
	}
	return r
}

// requestLogger 以 zap 記錄每個請求
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("remote", r.RemoteAddr),
					zap.Duration("duration", time.Since(start)),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
