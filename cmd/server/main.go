package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/encontrar/shopping-api/internal/config"
	"github.com/encontrar/shopping-api/internal/es"
	"github.com/encontrar/shopping-api/internal/handlers"
	"github.com/encontrar/shopping-api/internal/logging"
	"github.com/encontrar/shopping-api/internal/mailer"
	"github.com/encontrar/shopping-api/internal/middleware/csrf"
	"github.com/encontrar/shopping-api/internal/mykafka"
	"github.com/encontrar/shopping-api/internal/service"
	"github.com/encontrar/shopping-api/internal/session"
	httpserver "github.com/encontrar/shopping-api/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var store session.Store
	if configuration.REDIS_ADDR != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     configuration.REDIS_ADDR,
			Password: configuration.REDIS_PASSWORD,
			DB:       configuration.REDIS_DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("redis connect error: %v", err)
		}
		store = session.NewRedisStore(client)
	} else {
		logger.Warn("REDIS_ADDR not set, keeping sessions in the database")
		store = session.NewGormStore(db)
	}
	sessions := session.NewManager(store, db, configuration.SESSION_TTL)

	var codeMailer mailer.Mailer
	if configuration.SMTP_HOST != "" {
		codeMailer, err = mailer.New(mailer.SMTPConfig{
			Host:     configuration.SMTP_HOST,
			Port:     configuration.SMTP_PORT,
			Username: configuration.SMTP_USER,
			Password: configuration.SMTP_PASSWORD,
			From:     configuration.SMTP_FROM,
			FromName: "Encontrar Shopping",
		})
		if err != nil {
			log.Fatal(err)
		}
	} else {
		logger.Warn("SMTP_HOST not set, verification codes go to the log")
		codeMailer = &mailer.LogMailer{Logger: logger}
	}

	prod := &mykafka.Producer{}
	if configuration.KAFKA_ADDRESS != "" {
		prod, err = mykafka.NewProducer(strings.Split(configuration.KAFKA_ADDRESS, ","))
		if err != nil {
			log.Fatal(err)
		}
	} else {
		logger.Warn("KAFKA_ADDRESS not set, event publishing disabled")
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := logging.IntoContext(c.Request().Context(), logger)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	if configuration.CSRF_ENABLED {
		e.Use(csrf.Middleware(csrf.Config{
			Secure:    true,
			SkipPaths: []string{"/auth/register", "/auth/send-verification-code", "/auth/verify-code", "/auth/login"},
		}))
	}

	authService := &service.AuthService{DB: db, Mailer: codeMailer}
	deps := httpserver.Deps{
		DB:               db,
		Sessions:         sessions,
		AuthHandler:      &handlers.AuthHandler{Auth: authService, Sessions: sessions, Producer: prod},
		ProductHandler:   &handlers.ProductHandler{Catalog: &service.CatalogService{DB: db}, Producer: prod},
		PromotionHandler: &handlers.PromotionHandler{Promotions: &service.PromotionService{DB: db}},
		SalesHandler:     &handlers.SalesHandler{Sales: &service.SalesService{DB: db}, Producer: prod},
		DashboardHandler: &handlers.DashboardHandler{Dashboard: &service.DashboardService{DB: db}},
		SearchHandler:    handlers.NewSearchHandler(esClient, "product"),
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
