package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"missionreport/api/router/handlers"
	"missionreport/logger"
)

// NewRouter builds the HTTP handler. API routes live under /api and the
// Prometheus collectors under /metrics.
func NewRouter() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(requestLogger)

	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api", func(apiRouter chi.Router) {
		apiRouter.Use(brotliResponses)

		handlers.RegisterHealthRoutes(apiRouter)
		handlers.RegisterVersionRoutes(apiRouter)
		handlers.RegisterSettingsRoutes(apiRouter)
		handlers.RegisterMissionRoutes(apiRouter)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		logger.Error("Unhandled route: %s %s", r.Method, r.URL.Path)
		http.NotFound(w, r)
	})

	return router
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("%s %s -> %d (%d bytes, %s) [%s]", r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(),
			time.Since(started).Round(time.Millisecond), middleware.GetReqID(r.Context()))
	})
}

type brotliResponseWriter struct {
	http.ResponseWriter
	bw *brotli.Writer
}

func (w *brotliResponseWriter) WriteHeader(status int) {
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(status)
}

func (w *brotliResponseWriter) Write(p []byte) (int, error) {
	return w.bw.Write(p)
}

// brotliResponses compresses API responses for clients that accept br. Zip
// downloads are already compressed and pass through untouched.
func brotliResponses(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !acceptsBrotli(r.Header.Get("Accept-Encoding")) || strings.HasSuffix(r.URL.Path, "/attachments") {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Encoding", "br")
		w.Header().Add("Vary", "Accept-Encoding")
		bw := brotli.NewWriterLevel(w, brotli.DefaultCompression)
		defer func() {
			if err := bw.Close(); err != nil {
				logger.Error("Closing brotli stream for %s: %v", r.URL.Path, err)
			}
		}()
		next.ServeHTTP(&brotliResponseWriter{ResponseWriter: w, bw: bw}, r)
	})
}

// acceptsBrotli reports whether an Accept-Encoding header lists br with a non-zero weight.
func acceptsBrotli(header string) bool {
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(name), "br") {
			continue
		}
		q, found := strings.CutPrefix(strings.TrimSpace(params), "q=")
		if !found {
			return true
		}
		weight, err := strconv.ParseFloat(q, 64)
		return err == nil && weight > 0
	}
	return false
}
