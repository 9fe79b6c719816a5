package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/go-chi/chi/v5"
	"github.com/pochi-app/pochi-web/internal/chat"
	"github.com/pochi-app/pochi-web/internal/config"
	"github.com/pochi-app/pochi-web/internal/database"
	"github.com/pochi-app/pochi-web/internal/handlers"
	"github.com/pochi-app/pochi-web/internal/middleware"
	"github.com/pochi-app/pochi-web/internal/routes"
	"github.com/pochi-app/pochi-web/internal/scheduler"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	if cfg.TokenSecret == "" {
		log.Println("⚠️  WARNING: TOKEN_SECRET not set. Admin sessions will not survive a restart.")
		log.Println("   To generate one, run: openssl rand -base64 32")
	}

	// Redis holds visitor preferences and sessions; without it the gateway
	// cannot do its job.
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// MongoDB is optional; without it chat history is simply not stored.
	if cfg.MongoURI != "" {
		log.Printf("Connecting to MongoDB...")
		if err := database.Connect(cfg.MongoURI); err != nil {
			log.Printf("⚠️  WARNING: MongoDB unavailable, chat history disabled: %v", err)
		} else {
			defer database.Disconnect()
			if err := chat.EnsureIndexes(context.Background()); err != nil {
				log.Printf("⚠️  WARNING: failed to ensure chat indexes: %v", err)
			} else {
				log.Println("✅ MongoDB chat indexes ensured")
			}
		}
	} else {
		log.Println("⚠️  MONGODB_URI not set, chat history disabled")
	}

	// PostgreSQL is optional; without it the admin audit log is disabled.
	if cfg.PostgresURI != "" {
		log.Printf("Connecting to PostgreSQL...")
		if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
			log.Printf("⚠️  WARNING: PostgreSQL unavailable, audit log disabled: %v", err)
		} else {
			defer database.DisconnectPostgres()
			if err := database.InitPostgresTables(); err != nil {
				log.Printf("⚠️  WARNING: failed to init PostgreSQL tables: %v", err)
			}
		}
	} else {
		log.Println("⚠️  POSTGRES_URI not set, audit log disabled")
	}

	// Shared scheduler for the feedback poll, preview sweeps and
	// announcement auto-dismiss timers.
	sched := scheduler.New()
	defer sched.Shutdown()

	if err := handlers.Init(cfg, sched); err != nil {
		log.Fatal("Failed to initialize handlers:", err)
	}

	// Setup router
	r := chi.NewRouter()

	r.Use(middleware.Recover)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Visitor(cfg.IsProduction()))

	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, host check, per-IP + login rate limiting)")
	}

	// Health check (no rate limit)
	r.Get("/health", handlers.HealthCheck)

	routes.SetupRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("🚀 Pochi web gateway running on :%s (upstream %s)", cfg.Port, cfg.UpstreamURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Server shutdown: %v", err)
	}
}
