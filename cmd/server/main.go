package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitalpath/VitalPath/internal/api"
	"github.com/vitalpath/VitalPath/internal/metrics"
	"github.com/vitalpath/VitalPath/internal/middleware"
	"github.com/vitalpath/VitalPath/internal/services"
	"github.com/vitalpath/VitalPath/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	addr := utils.SafeEnv("VITALPATH_ADDR", ":8080")
	commit := os.Getenv("VITALPATH_COMMIT")
	buildTime := os.Getenv("VITALPATH_BUILD_TIME")

	store, closeStore, err := openStore(os.Getenv("VITALPATH_SQLITE_PATH"), os.Getenv("VITALPATH_MIGRATIONS_DIR"))
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer closeStore()

	submitters, closeSubmitters, err := openSubmitterStore(os.Getenv("VITALPATH_REDIS_ADDR"))
	if err != nil {
		log.Fatalf("open submitter store: %v", err)
	}
	defer closeSubmitters()

	pollInterval := services.DefaultPollInterval
	if v := os.Getenv("VITALPATH_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("invalid VITALPATH_POLL_INTERVAL=%q: %v", v, err)
		}
		pollInterval = d
	}

	m := metrics.New()
	router := api.NewRouter(store, submitters, m, pollInterval)
	defer router.Close()

	mux := http.NewServeMux()
	router.Register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		locale := middleware.LocaleFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "VitalPath API",
			"locale":     locale,
			"msg":        utils.T(locale, "health.ok"),
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	// Frontend serving strategy (priority):
	// 1) Static files if VITALPATH_STATIC_DIR is set (fullstack image)
	// 2) Dev proxy if VITALPATH_DEV_FRONTEND_URL is set (proxy / to Vite dev)
	if staticDir := os.Getenv("VITALPATH_STATIC_DIR"); staticDir != "" {
		fs := http.FileServer(http.Dir(staticDir))
		mux.Handle("/", fs)
	} else if devURL := os.Getenv("VITALPATH_DEV_FRONTEND_URL"); devURL != "" {
		if u, err := url.Parse(devURL); err == nil {
			rp := httputil.NewSingleHostReverseProxy(u)
			// Ensure no-store headers also apply to proxied responses
			rp.ModifyResponse = func(res *http.Response) error {
				res.Header.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
				res.Header.Set("Pragma", "no-cache")
				res.Header.Set("Expires", "0")
				return nil
			}
			mux.Handle("/", rp)
		} else {
			log.Printf("invalid VITALPATH_DEV_FRONTEND_URL=%q: %v", devURL, err)
		}
	}

	handler := m.Instrument(
		middleware.SecureHeaders(
			middleware.CORS(
				middleware.NoStore(
					middleware.LocaleMiddleware(
						middleware.WithAuth(mux))))))

	srv := &http.Server{Addr: addr, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("VitalPath server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
