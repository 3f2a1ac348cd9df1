package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getlims/limsgo/internal/config"
	"github.com/getlims/limsgo/internal/database"
	"github.com/getlims/limsgo/internal/handlers"
	"github.com/getlims/limsgo/internal/models"
	"github.com/getlims/limsgo/internal/services/crm"
	"github.com/getlims/limsgo/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (detects embedded vs external automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-migrate schema
	log.Println("Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.User{},

		// Inventory
		&models.ItemType{},
		&models.Location{},
		&models.Tag{},
		&models.AmountMeasure{},
		&models.Set{},
		&models.Item{},
		&models.ItemProperty{},
		&models.ItemTransfer{},

		// Projects and products
		&models.Organism{},
		&models.Order{},
		&models.Project{},
		&models.ProductStatus{},
		&models.Product{},
		&models.Comment{},
		&models.WorkLog{},

		// CRM mirrors
		&models.CRMAccount{},
		&models.CRMProject{},
		&models.CRMQuote{},
	)
	if err != nil {
		log.Printf("Migration warning: %v\n", err)
	} else {
		log.Println("Schema synchronized successfully")
	}

	// 4. Apply process-wide model configuration
	models.SetCRMBaseURL(cfg.CRM.BaseURL)
	models.SetProjectNumbering(cfg.Projects.IdentifierPrefix, cfg.Projects.IdentifierStart)

	// 5. Start the live event hub
	hub := websocket.NewHub()
	go hub.Run()

	// 6. Set up HTTP router
	router := handlers.NewRouter(db, cfg, hub)

	// 7. Start CRM sync service (background)
	crmService := crm.NewSyncService(db, crm.Config{
		URL:          cfg.CRM.GatewayURL,
		Database:     cfg.CRM.Database,
		Username:     cfg.CRM.Username,
		Password:     cfg.CRM.Password,
		SyncInterval: cfg.CRM.SyncInterval,
	})
	crmService.Start()
	router.SetCRMService(crmService)

	// 8. Start server with graceful shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Printf("Server (%s) starting on port %s\n", cfg.Env, cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	log.Printf("Received signal: %v. Shutting down gracefully...\n", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	crmService.Stop()

	// Close database (this also stops embedded PostgreSQL)
	log.Println("Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("Shutdown complete")
}
