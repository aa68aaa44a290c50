package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/extractor"
	"github.com/facegate/facegate/internal/gate"
	"github.com/facegate/facegate/internal/storage"
	"github.com/facegate/facegate/internal/storage/memory"
	"github.com/facegate/facegate/internal/storage/postgres"
	"github.com/facegate/facegate/internal/web"
)

// ticketSweepInterval drives the periodic removal of expired capture
// tickets from whichever backend is active.
const ticketSweepInterval = 10 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the access control server",
	Long: `Start the FaceGate server.
The server exposes the face capture, enrollment, approval, and session API
together with the admin console endpoints. It uses PostgreSQL when
DATABASE_URL is set and reachable, and an in-memory store otherwise.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().String("session-secret", "", "Secret for signing admin session cookies")
}

// resolveServeHostPort resolves port, host and session secret from flags and
// environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")
	sessionSecret := mustGetString(cmd, "session-secret")

	if sessionSecret == "" {
		sessionSecret = os.Getenv("WEB_SESSION_SECRET")
	}
	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host, sessionSecret
}

// sweepTickets prunes expired capture tickets until the context is canceled.
func sweepTickets(ctx context.Context, store storage.Store) {
	ticker := time.NewTicker(ticketSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruned, err := store.PruneExpiredTickets(ctx)
			if err != nil {
				log.Printf("ticket sweep failed: %v", err)
				continue
			}
			if pruned > 0 {
				log.Printf("pruned %d expired capture tickets", pruned)
			}
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := storage.Connect(ctx, cfg, postgres.Open, func(cfg *config.Config) storage.Store {
		return memory.NewStore(cfg.Recognition.LogRetention)
	})
	defer store.Close()

	ex := extractor.NewClient(cfg.Extractor.URL)
	audit := gate.NewAudit(store)
	audit.Record(ctx, "=== SYSTEM STARTED WITH %s STORAGE ===", store.Mode())

	go sweepTickets(ctx, store)

	port, host, sessionSecret := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, store, ex, port, host, sessionSecret)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		audit.Record(context.Background(), "=== SYSTEM SHUTDOWN ===")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
		cancel()
	}()

	fmt.Printf("Starting FaceGate on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
