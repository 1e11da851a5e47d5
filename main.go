// main.go - Entry point for the email login backend

package main // Declares the package name

import ( // Import required packages
	"context"   // Startup and shutdown deadlines
	"errors"    // For ErrServerClosed check
	"log"       // Logging
	"net/http"  // HTTP server
	"os"        // Signal types
	"os/signal" // Shutdown signal handling
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"email-login-backend/config"    // Project config management
	"email-login-backend/database"  // Per-request session provider
	"email-login-backend/handlers"  // HTTP handlers and router
	"email-login-backend/telemetry" // Optional tracing

	"github.com/gin-gonic/gin" // Gin web framework
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() { // Main function, program entry point
	// STEP 1: Load configuration and set up collaborators
	cfg := config.Load() // Load configuration (.env file, then environment)
	if err := cfg.Validate(); err != nil {
		log.Fatal("Config error: ", err)
	}
	gin.SetMode(cfg.GinMode)

	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	shutdownTracing, err := telemetry.Init(startupCtx, cfg) // No-op unless an OTLP endpoint is set
	if err != nil {
		log.Fatal("Telemetry setup error: ", err)
	}

	provider, err := database.NewProvider(cfg) // Sessions are opened per request, not here
	if err != nil {
		log.Fatal("DB provider error: ", err)
	}
	if cfg.DBAutoMigrate {
		if err := provider.Migrate(startupCtx); err != nil { // Create users table if needed
			log.Fatal("DB migration error: ", err)
		}
	}

	// STEP 2: Create Gin router and configure routes
	r := handlers.SetupRouter(cfg, provider)

	// STEP 3: Start the web server and wait for a shutdown signal
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit // Block until signal received
	log.Println("Shutdown signal received")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Printf("Tracer shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
