// EconPulse - economic dashboard AI backend entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/econpulse/econpulse/internal/domain/auth"
	"github.com/econpulse/econpulse/internal/infra/ai"
	"github.com/econpulse/econpulse/internal/infra/config"
	"github.com/econpulse/econpulse/internal/infra/eventbus"
	"github.com/econpulse/econpulse/internal/infra/sqlite"
	"github.com/econpulse/econpulse/internal/mcp"
	"github.com/econpulse/econpulse/internal/server"
	"github.com/econpulse/econpulse/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("econpulse", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}

	if *showHelp {
		printHelp(out)
		return 0
	}

	command := "serve"
	if fs.NArg() > 0 {
		command = fs.Arg(0)
	}

	switch command {
	case "serve":
		return serve(out)
	case "mcp":
		return serveMCP(out)
	case "migrate":
		return migrate(out)
	case "version":
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	default:
		fmt.Fprintf(out, "unknown command: %s\n\n", command) //nolint:errcheck
		printHelp(out)
		return 2
	}
}

// serve runs the HTTP API until interrupted.
func serve(out io.Writer) int {
	cfg := config.Load()

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(out, "ERROR opening database: %v\n", err) //nolint:errcheck
		return 1
	}

	if err := sqlite.MigrateUp(db); err != nil {
		fmt.Fprintf(out, "ERROR running migrations: %v\n", err) //nolint:errcheck
		db.Close() //nolint:errcheck
		return 1
	}

	ctx := context.Background()
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		authSvc := auth.NewService(db)
		if err := authSvc.EnsureAccount(ctx, cfg.ClientID, "bootstrap", cfg.ClientSecret); err != nil {
			fmt.Fprintf(out, "ERROR seeding service account: %v\n", err) //nolint:errcheck
			db.Close() //nolint:errcheck
			return 1
		}
	}

	bus := eventbus.New()
	aiSvc := buildAIService(cfg, bus)

	srvConfig := server.DefaultConfig()
	srvConfig.Host = cfg.HTTPHost
	srvConfig.Port = cfg.HTTPPort
	srv := server.NewServer(db, aiSvc, bus, srvConfig)

	// Shut down cleanly on SIGINT/SIGTERM.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	select {
	case <-stop:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(out, "ERROR during shutdown: %v\n", err) //nolint:errcheck
			return 1
		}
		return 0
	case err := <-errCh:
		fmt.Fprintf(out, "ERROR: %v\n", err) //nolint:errcheck
		return 1
	}
}

// serveMCP runs the MCP server over stdio until the client disconnects.
func serveMCP(out io.Writer) int {
	cfg := config.Load()

	bus := eventbus.New()
	aiSvc := buildAIService(cfg, bus)

	srv, err := mcp.NewServer(aiSvc)
	if err != nil {
		fmt.Fprintf(out, "ERROR: %v\n", err) //nolint:errcheck
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := srv.Run(ctx); err != nil {
		fmt.Fprintf(out, "ERROR: %v\n", err) //nolint:errcheck
		return 1
	}
	return 0
}

// migrate applies pending migrations and exits.
func migrate(out io.Writer) int {
	cfg := config.Load()

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(out, "ERROR opening database: %v\n", err) //nolint:errcheck
		return 1
	}
	defer db.Close() //nolint:errcheck

	if err := sqlite.MigrateUp(db); err != nil {
		fmt.Fprintf(out, "ERROR running migrations: %v\n", err) //nolint:errcheck
		return 1
	}

	v, err := sqlite.MigrationVersion(db)
	if err != nil {
		fmt.Fprintf(out, "ERROR reading migration version: %v\n", err) //nolint:errcheck
		return 1
	}
	fmt.Fprintf(out, "migrations applied, schema version %d\n", v) //nolint:errcheck
	return 0
}

// buildAIService assembles the provider registry from configuration. The
// deterministic local provider is always the baseline; a remote provider is
// added only when an API key is configured.
func buildAIService(cfg config.Config, bus eventbus.EventBus) *ai.Service {
	reg := ai.NewRegistry(ai.NewLocalProvider(), ai.RegistryOptions{
		ActiveID: cfg.AIProvider,
		ProbeTTL: cfg.ProbeCache,
		Bus:      bus,
	})

	if cfg.AIAPIKey != "" {
		reg.Register(ai.NewOpenAIProvider(ai.OpenAIConfig{
			APIURL:     cfg.AIAPIURL,
			APIKey:     cfg.AIAPIKey,
			Model:      cfg.AIModel,
			EmbedModel: cfg.AIEmbedModel,
		}))
	}

	return ai.NewService(reg, bus)
}

func printHelp(out io.Writer) {
	helpText := `EconPulse - economic dashboard AI backend

Usage:
  econpulse [options] [command]

Options:
  --version    Show version information
  --help       Show this help message

Commands:
  serve        Start the HTTP API server (default)
  mcp          Start the MCP server over stdio
  migrate      Run database migrations and exit

Environment:
  AI_PROVIDER          Active provider id (default "local")
  AI_API_KEY           Remote provider API key (enables "openai")
  AI_API_URL           Remote provider base URL
  DB_PATH              SQLite database path (default "econpulse.db")
  JWT_SECRET           HMAC secret for issued tokens (required to serve)
  ECONPULSE_CLIENT_ID / ECONPULSE_CLIENT_SECRET
                       Seed a service account at startup

Examples:
  econpulse --version
  econpulse serve
  econpulse mcp`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
