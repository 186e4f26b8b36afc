package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"coop-service/configs"
	"coop-service/internal/handler"
	"coop-service/internal/middleware"
	"coop-service/internal/repository"
	"coop-service/internal/service"
	"coop-service/pkg/scheduler"
)

func main() {
	// Initialize logger
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	// Load configuration
	cfg, err := configs.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize repositories
	repos := repository.NewRepository(db)

	// Initialize services
	services := service.NewService(service.Dependencies{
		Repos:  repos,
		Logger: log,
		Config: cfg,
	})

	// Initialize handlers
	handlers := handler.NewHandler(handler.Dependencies{
		Services: services,
		Logger:   log,
		Config:   cfg,
	})

	// Initialize router
	router := mux.NewRouter()
	router.Use(middleware.LogMiddleware(log))

	// Credit scoring endpoints
	router.HandleFunc("/members/{id}/credit-score", handlers.Scoring.Calculate).Methods(http.MethodPost)
	router.HandleFunc("/members/{id}/pay-later/eligibility", handlers.PayLater.CheckEligibility).Methods(http.MethodGet)

	// Pay-later application endpoints
	router.HandleFunc("/pay-later/applications", handlers.PayLater.CreateApplication).Methods(http.MethodPost)
	router.HandleFunc("/members/{id}/pay-later/applications", handlers.PayLater.GetApplications).Methods(http.MethodGet)
	router.HandleFunc("/pay-later/applications/{id}/approve", handlers.PayLater.ApproveApplication).Methods(http.MethodPost)
	router.HandleFunc("/pay-later/applications/{id}/reject", handlers.PayLater.RejectApplication).Methods(http.MethodPost)
	router.HandleFunc("/pay-later/applications/{id}/installments", handlers.PayLater.GetInstallments).Methods(http.MethodGet)

	// Installment payment endpoints
	router.HandleFunc("/pay-later/installments/{id}/pay", handlers.PayLater.ProcessPayment).Methods(http.MethodPost)
	router.HandleFunc("/pay-later/installments/{id}/cancel", handlers.PayLater.CancelPayment).Methods(http.MethodPost)

	// Start the overdue sweep scheduler
	overdueScheduler := scheduler.NewScheduler(services.PayLater, log)
	if err := overdueScheduler.Start(cfg.Scheduler.OverdueCron); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer overdueScheduler.Stop()

	// Configure and start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Second * 15,
		WriteTimeout: time.Second * 15,
		IdleTimeout:  time.Second * 60,
	}

	// Start the server in a goroutine
	go func() {
		log.Infof("Starting server on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Create a deadline context for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	// Shutdown the server
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Info("Server gracefully stopped")
}

func initDB(cfg *configs.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.DBName)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
