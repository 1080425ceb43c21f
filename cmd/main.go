package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"lendledger/internal/clients"
	"lendledger/internal/config"
	"lendledger/internal/repository"
	"lendledger/internal/service"
	"lendledger/internal/transport/rest"
	"lendledger/internal/transport/websocket"
	"lendledger/pkg/database/postgres"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using system env or defaults")
	}

	// top-level context which we can cancel on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.Load()

	db := mustInitPostgres(log, cfg.Postgres)
	defer postgres.Close(db)

	if err := repository.Migrate(db); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	redisClient := mustInitRedis(log, cfg.Redis)
	defer redisClient.Close()

	var (
		statementStorage service.StatementStorage
		localStorage     *clients.LocalStorage
	)
	if cfg.Statements.UseS3 {
		s3Storage, err := clients.NewS3Storage(ctx, clients.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Bucket:          cfg.S3.Bucket,
			UseSSL:          cfg.S3.UseSSL,
			Region:          cfg.S3.Region,
			Prefix:          cfg.S3.Prefix,
		})
		if err != nil {
			log.Fatal("s3 init", zap.Error(err))
		}
		statementStorage = s3Storage
	} else {
		localStorage, err = clients.NewLocalStorage(cfg.Statements.Dir, cfg.Statements.PublicPrefix, cfg.Statements.BaseURL)
		if err != nil {
			log.Fatal("storage init", zap.Error(err))
		}
		statementStorage = localStorage
	}

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)
	wsClient := clients.NewWebSocketClient(wsHub)

	borrowerRepo := repository.NewBorrowerRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	borrowerSvc := service.NewBorrowerService(borrowerRepo, paymentRepo, redisClient, log)
	loanSvc := service.NewLoanService(loanRepo, paymentRepo, redisClient, wsClient, log)
	paymentSvc := service.NewPaymentService(paymentRepo, redisClient, wsClient, log)
	reportSvc := service.NewReportService(paymentRepo, redisClient, statementStorage, wsClient, log)

	handler := rest.NewHandler(borrowerSvc, loanSvc, paymentSvc, reportSvc, log)
	// auth is pluggable; nothing is wired in this deployment
	router := handler.InitRouterWithAuth(nil)

	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		wsHub.HandleWebSocket(w, r)
	})

	root := chi.NewRouter()

	// public: serve generated statement files when stored locally
	if localStorage != nil {
		root.Get("/files/{file}", func(w http.ResponseWriter, r *http.Request) {
			file := chi.URLParam(r, "file")
			path := filepath.Join(localStorage.BaseDir, filepath.Base(file))
			if _, err := os.Stat(path); err != nil {
				if os.IsNotExist(err) {
					http.NotFound(w, r)
					return
				}
				http.Error(w, "failed to access file", http.StatusInternalServerError)
				return
			}

			// original filename in Content-Disposition, random prefix stripped
			orig := file
			if idx := strings.IndexByte(file, '_'); idx >= 0 {
				orig = file[idx+1:]
			}
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", orig))

			http.ServeFile(w, r, path)
		})
	}

	root.Mount("/", router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      withCORS(root),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	// delete old local statement files periodically
	if localStorage != nil {
		maxAge := time.Duration(cfg.Statements.MaxAgeHours) * time.Hour
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := localStorage.CleanupOlderThan(maxAge); err != nil {
						log.Warn("statement cleanup", zap.Error(err))
					}
				}
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-srvErr:
		if err != nil {
			log.Fatal("http server", zap.Error(err))
		}
	case sig := <-stop:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("http server shutdown", zap.Error(err))
		}

		cancel()

		postgres.Close(db)
		redisClient.Close()

		log.Info("shutdown complete")
	}
}

func mustInitPostgres(log *zap.Logger, cfg config.PostgresConfig) *sql.DB {
	db, err := postgres.NewPostgresConnection(postgres.ConnectionInfo{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.User,
		DBName:   cfg.DBName,
		SSLMode:  cfg.SSLMode,
		Password: cfg.Password,
	})
	if err != nil {
		log.Fatal("postgres init", zap.Error(err))
	}
	return db
}

func mustInitRedis(log *zap.Logger, cfg config.RedisConfig) *clients.RedisClient {
	client, err := clients.NewRedisClient(clients.RedisConfig{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: time.Duration(cfg.DialTimeout) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		Prefix:      cfg.Prefix,
	})
	if err != nil {
		log.Fatal("redis init", zap.Error(err))
	}
	return client
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")

			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
