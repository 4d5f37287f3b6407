package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/reimagen/agentarchitecture/internal/analyzer"
	"github.com/reimagen/agentarchitecture/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the REST API server.

Endpoints:
  POST /api/workflows                  analyze a workflow description
  GET  /api/workflows                  list stored analyses
  GET  /api/workflows/{id}             fetch one analysis
  POST /api/workflows/{id}/approve     approve and synthesize the org chart
  GET  /api/metrics                    aggregate pipeline metrics
  GET  /api/health                     liveness probe

Examples:
  # Start with defaults (127.0.0.1:8080)
  agentarch serve

  # Start on custom host and port
  agentarch serve --host 0.0.0.0 --port 3000`,
	RunE: runServeCmd,
}

var (
	serveHost   string
	servePort   int
	serveNoCORS bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "",
		"Host address to bind to (overrides config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0,
		"Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveNoCORS, "no-cors", false,
		"Disable CORS headers")
}

func runServeCmd(_ *cobra.Command, _ []string) error {
	logger := buildLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	llmClient, err := buildLLMClient(cfg)
	if err != nil {
		return err
	}

	workflowStore, err := buildStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() { _ = workflowStore.Close() }()

	orchestrator := analyzer.New(llmClient, logger,
		analyzer.WithStore(workflowStore),
		analyzer.WithSummarizer(cfg.Pipeline.SummarizerEnabled),
		analyzer.WithStageTimeout(stageTimeout(cfg)),
	)

	serverCfg := api.DefaultConfig()
	serverCfg.Host = cfg.Server.Host
	serverCfg.Port = cfg.Server.Port
	serverCfg.CORSOrigins = cfg.Server.AllowedOrigins
	if serveHost != "" {
		serverCfg.Host = serveHost
	}
	if servePort != 0 {
		serverCfg.Port = servePort
	}
	serverCfg.EnableCORS = !serveNoCORS

	server := api.New(serverCfg, orchestrator, workflowStore, logger)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		return server.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
