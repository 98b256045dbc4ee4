package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/iudanet/liftlog/internal/client/iocli"
	"github.com/iudanet/liftlog/internal/client/storage"
)

// ResolveSession returns the session to edit. An explicit id wins and is
// remembered; otherwise the remembered session is used.
func ResolveSession(ctx context.Context, meta storage.MetadataStorage, explicit int64) (int64, error) {
	if explicit > 0 {
		if err := meta.SaveActiveSession(ctx, explicit); err != nil {
			return 0, fmt.Errorf("failed to remember session: %w", err)
		}
		return explicit, nil
	}

	id, err := meta.ActiveSession(ctx)
	if errors.Is(err, storage.ErrNoActiveSession) {
		return 0, fmt.Errorf("no session selected. Run 'liftlog use <session>' or pass -session")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read active session: %w", err)
	}
	return id, nil
}

// RunUse remembers the session opened by default.
func RunUse(ctx context.Context, out iocli.IO, meta storage.MetadataStorage, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: liftlog use <session>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid session %q", args[0])
	}

	if err := meta.SaveActiveSession(ctx, id); err != nil {
		return fmt.Errorf("failed to remember session: %w", err)
	}
	out.Printf("Active session: %d\n", id)
	return nil
}

// RunStatus prints the client configuration and local state.
func RunStatus(ctx context.Context, out iocli.IO, meta storage.MetadataStorage, serverURL, dbPath string) error {
	out.Println("=== Status ===")
	out.Printf("Server:   %s\n", serverURL)
	out.Printf("Database: %s\n", dbPath)

	node, err := meta.NodeID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get node id: %w", err)
	}
	out.Printf("Client:   %s\n", node)

	id, err := meta.ActiveSession(ctx)
	switch {
	case errors.Is(err, storage.ErrNoActiveSession):
		out.Println("Session:  none")
	case err != nil:
		return fmt.Errorf("failed to read active session: %w", err)
	default:
		out.Printf("Session:  %d\n", id)
	}
	return nil
}

// PrintUsage prints the command line reference.
func PrintUsage(out iocli.IO) {
	out.Println("Usage: liftlog [flags] [command]")
	out.Println()
	out.Println("Commands:")
	out.Println("  edit            open the session editor (default)")
	out.Println("  use <session>   remember the session to edit")
	out.Println("  status          show client configuration")
	out.Println()
	out.Println("Flags:")
	out.Println("  -server URL     server address (env LIFTLOG_SERVER)")
	out.Println("  -db PATH        local database (env LIFTLOG_DB)")
	out.Println("  -session ID     session to edit")
	out.Println("  -debug          verbose logging to stderr")
	out.Println("  -version        show version information")
}
