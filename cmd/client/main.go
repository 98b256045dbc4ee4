package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/liftlog/internal/client/api"
	"github.com/iudanet/liftlog/internal/client/cli"
	"github.com/iudanet/liftlog/internal/client/editor"
	"github.com/iudanet/liftlog/internal/client/iocli"
	"github.com/iudanet/liftlog/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const (
	defaultServerURL = "http://localhost:8080"
	defaultDBPath    = "liftlog-client.db"
)

func main() {
	// Глобальные флаги; переменные окружения подставляются как значения по умолчанию
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", envOr("LIFTLOG_SERVER", defaultServerURL), "Server URL")
	dbPath := flag.String("db", envOr("LIFTLOG_DB", defaultDBPath), "Path to local database")
	sessionID := flag.Int64("session", 0, "Workout session to edit")
	debug := flag.Bool("debug", false, "Verbose logging to stderr")

	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	command := "edit"
	args := flag.Args()
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := iocli.NewStdio()

	// Открываем BoltDB storage
	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	switch command {
	case "edit":
		err = runEditor(ctx, out, boltStorage, logger, *serverURL, *sessionID)
	case "use":
		err = cli.RunUse(ctx, out, boltStorage, args)
	case "status":
		err = cli.RunStatus(ctx, out, boltStorage, *serverURL, *dbPath)
	case "help":
		cli.PrintUsage(out)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		cli.PrintUsage(out)
		stop()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func runEditor(ctx context.Context, out iocli.IO, boltStorage *boltdb.Storage, logger *slog.Logger, serverURL string, explicit int64) error {
	sessionID, err := cli.ResolveSession(ctx, boltStorage, explicit)
	if err != nil {
		return err
	}

	node, err := boltStorage.NodeID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get node id: %w", err)
	}

	apiClient := api.NewClient(serverURL, api.WithClientID(node))

	session, err := editor.NewSession(sessionID, apiClient, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	logger.Debug("editor started",
		slog.Int64("session_id", sessionID),
		slog.String("server", serverURL),
		slog.String("node_id", node))

	return cli.New(out, session, logger).Run(ctx)
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func printVersion() {
	fmt.Printf("LiftLog Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
