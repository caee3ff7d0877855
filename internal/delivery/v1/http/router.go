package http

import (
	"net/http"
	"strconv"
	"time"

	_ "github.com/DRSN-tech/starmatch-backend/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/starmatch-backend/internal/cfg"
	"github.com/DRSN-tech/starmatch-backend/internal/metrics"
	"github.com/DRSN-tech/starmatch-backend/internal/usecase"
	"github.com/DRSN-tech/starmatch-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(recUC usecase.RecommendUC, httpCfg *cfg.HTTPConfig) {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.RealIP)
	r.router.Use(middleware.Recoverer)
	r.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   httpCfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.router.Use(metricsMiddleware)

	r.router.Get("/health", health)
	r.router.Handle("/metrics", promhttp.Handler())
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), // ссылка на JSON
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		if httpCfg.RateLimit > 0 {
			v1.Use(httprate.LimitByIP(httpCfg.RateLimit, httpCfg.RateWindow))
		}

		recHandler := NewRecommendHandler(recUC, r.logger)
		registerRecommendRoutes(v1, recHandler)
	})
}

func registerRecommendRoutes(router chi.Router, h *RecommendHandler) {
	router.Route("/recommendations", func(rec chi.Router) {
		rec.Post("/description", h.recommendForDescription)
		rec.Get("/{brand}", h.recommendForBrand)
	})
	router.Get("/candidates/{artist}", h.candidateDetail)
	router.Get("/explanations/{brand}/{artist}", h.explain)
}

// health
//
//	@Summary	Проверка доступности
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Router		/health [get]
func health(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// metricsMiddleware пишет число и длительность запросов по шаблону маршрута.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordAPIRequest(r.Method, route, strconv.Itoa(status), time.Since(start))
	})
}
