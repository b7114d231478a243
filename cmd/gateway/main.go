package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	api "github.com/mind-engage/evalboard/internal/api/http"
	"github.com/mind-engage/evalboard/internal/assessment"
	auth "github.com/mind-engage/evalboard/internal/auth/middleware"
	"github.com/mind-engage/evalboard/internal/cache"
	"github.com/mind-engage/evalboard/internal/config"
	"github.com/mind-engage/evalboard/internal/db"
	storage "github.com/mind-engage/evalboard/internal/storage"
	syncx "github.com/mind-engage/evalboard/internal/sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stderr, "", log.LstdFlags)

	// --- Store ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var (
		dbh    *sql.DB
		store  assessment.Store
		events api.EventLister
		rec    syncx.Recorder
	)
	if db.Driver(cfg.StoreDriver) == db.DriverMemory {
		store = assessment.NewInMemoryStore()
		mem := syncx.NewMemoryLog()
		events, rec = mem, mem
	} else {
		var err error
		dbh, err = db.Open(ctx, db.Driver(cfg.StoreDriver), cfg.DBDSN)
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		defer dbh.Close()
		store = assessment.NewSQLStore(dbh, cfg.StoreDriver)
		repo := syncx.NewEventRepo(dbh, hostname())
		events, rec = repo, repo
	}

	// --- Cache (bypassed when REDIS_ADDR is unset or unreachable) ---
	statsCache := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, "evalboard:", logger)
	defer statsCache.Close()

	svc := assessment.NewService(store,
		assessment.WithEvents(rec),
		assessment.WithLogger(logger),
		assessment.WithStatsCache(statsCache, cfg.StatsCacheTTL),
	)
	if cfg.SeedDemo {
		if err := assessment.SeedDemo(ctx, svc); err != nil {
			log.Fatalf("seed demo data: %v", err)
		}
	}

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, auth.Credentials{
		AdminUser:     cfg.AdminUser,
		AdminPassHash: cfg.AdminPassHash,
		AllowDevLogin: cfg.Mode == config.ModeOffline,
	}))

	// Protected API (JWT → role in context → RBAC). With auth disabled every
	// request acts as admin.
	r.Route("/api", func(pr chi.Router) {
		if cfg.EnableAuth {
			pr.Use(auth.JWTMiddleware(authSvc))
		} else {
			pr.Use(auth.StaticIdentity(auth.RoleAdmin))
		}
		api.Mount(pr, api.Deps{
			Service:        svc,
			Blobs:          bs,
			Events:         events,
			ImportMaxBytes: cfg.ImportMaxBytes,
			Logger:         logger,
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if dbh != nil {
			if err := dbh.PingContext(r.Context()); err != nil {
				http.Error(w, "db unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(200)
	})

	log.Printf("listening on %s (mode=%s, store=%s, auth=%t, cache=%t)",
		cfg.HTTPAddr, cfg.Mode, cfg.StoreDriver, cfg.EnableAuth, statsCache.Enabled())
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

func hostname() string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return "evalboard"
}
