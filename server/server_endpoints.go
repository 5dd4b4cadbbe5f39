package server

import (
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/sessiongate/sessiongate/config"
	"github.com/sessiongate/sessiongate/log"
	"github.com/sessiongate/sessiongate/util"
	"github.com/sessiongate/sessiongate/web"
)

func createRouter(cfg *config.Config) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID, requestLogger, middleware.Recoverer)

	configureCorsHandler(router)

	configureDebugHandler(router)

	configureRootHandler(cfg, router)

	return router
}

// requestLogger puts a request scoped logger into the context and logs the outcome of each request
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		start := time.Now()

		ctx, logger := log.CtxWithFields(req.Context(), logrus.Fields{
			"client_ip":  util.HTTPClientIP(req),
			"request_id": middleware.GetReqID(req.Context()),
		})

		ww := middleware.NewWrapResponseWriter(rw, req.ProtoMajor)

		next.ServeHTTP(ww, req.WithContext(ctx))

		logger.WithFields(logrus.Fields{
			"method":      req.Method,
			"path":        log.EscapeInput(req.URL.Path),
			"status":      ww.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("http request")
	})
}

func configureRootHandler(cfg *config.Config, router *chi.Mux) {
	router.Get("/", func(writer http.ResponseWriter, request *http.Request) {
		t := template.New("index")
		_, _ = t.Parse(web.IndexTmpl)

		type HandlerLink struct {
			URL   string
			Title string
		}

		type PageData struct {
			Links     []HandlerLink
			Version   string
			BuildTime string
		}

		pd := PageData{
			Links: []HandlerLink{
				{
					URL:   "/api/cache/stats",
					Title: "Session cache state",
				},
				{
					URL:   "/debug/",
					Title: "Go Profiler",
				},
			},
			Version:   util.Version,
			BuildTime: util.BuildTime,
		}

		if cfg.Metrics.Enable {
			pd.Links = append(pd.Links, HandlerLink{
				URL:   cfg.Metrics.Path,
				Title: "Prometheus endpoint",
			})
		}

		err := t.Execute(writer, pd)
		if err != nil {
			log.FromCtx(request.Context()).Error("can't write index template: ", err)
			writer.WriteHeader(http.StatusInternalServerError)
		}
	})
}

func configureDebugHandler(router *chi.Mux) {
	router.Mount("/debug", middleware.Profiler())
}

func configureCorsHandler(router *chi.Mux) {
	crs := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	router.Use(crs.Handler)
}
