package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/liftlog/internal/client/cache"
	"github.com/iudanet/liftlog/internal/client/iocli"
	"github.com/iudanet/liftlog/internal/client/mutation"
	"github.com/iudanet/liftlog/internal/client/notify"
	"github.com/iudanet/liftlog/internal/models"
)

// Editor is the part of editor.Session the CLI drives.
type Editor interface {
	SessionID() int64
	SetsKey() cache.Key
	Load(ctx context.Context) error
	LoadExercise(ctx context.Context, exerciseID int64) (cache.Collection, error)
	AddSet(ctx context.Context, in models.SetInput, cb mutation.Callbacks) *mutation.Handle
	EditSet(ctx context.Context, id models.SetID, u models.SetUpdate, cb mutation.Callbacks) *mutation.Handle
	RemoveSet(ctx context.Context, id models.SetID, cb mutation.Callbacks) *mutation.Handle
	Subscribe(key cache.Key, l notify.Listener) func()
	Sets() []models.Set
	Summary() models.Summary
	Pending() int
	Refresh()
	Sync(ctx context.Context) error
}

// ErrQuit is returned by Exec for the quit command.
var ErrQuit = errors.New("quit")

// DefaultDrainTimeout bounds waiting for unsettled changes on exit.
const DefaultDrainTimeout = 10 * time.Second

// Cli is an interactive line editor for one workout session.
type Cli struct {
	io           iocli.IO
	editor       Editor
	logger       *slog.Logger
	handles      []*mutation.Handle
	drainTimeout time.Duration
	mu           sync.Mutex
	// out держит многострочный вывод целиком: таблицы печатают и ввод,
	// и горутина уведомлений
	out sync.Mutex
}

// New creates a Cli over ed.
func New(io iocli.IO, ed Editor, logger *slog.Logger) *Cli {
	return &Cli{
		io:           io,
		editor:       ed,
		logger:       logger,
		drainTimeout: DefaultDrainTimeout,
	}
}

// Run loads the session, renders it and executes commands until quit or end
// of input. Every change to the session's sets is rendered as it happens.
func (c *Cli) Run(ctx context.Context) error {
	if err := c.editor.Load(ctx); err != nil {
		return err
	}

	unsubscribe := c.editor.Subscribe(c.editor.SetsKey(), func(_ cache.Key, coll cache.Collection) {
		c.render(coll.Sets())
	})
	defer unsubscribe()

	c.out.Lock()
	c.io.Printf("Session %d\n", c.editor.SessionID())
	sets := c.editor.Sets()
	renderSets(c.io, sets, models.Summarize(sets))
	c.out.Unlock()
	if c.io.IsInteractive() {
		c.io.Println("Type 'help' for commands.")
	}

	prompt := ""
	if c.io.IsInteractive() {
		prompt = "> "
	}

	for {
		line, err := c.io.ReadInput(prompt)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		err = c.Exec(ctx, line)
		if errors.Is(err, ErrQuit) {
			break
		}
		if err != nil {
			c.io.Printf("Error: %v\n", err)
		}
	}

	return c.drain(ctx)
}

// Exec runs one command line.
func (c *Cli) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "add", "a":
		return c.runAdd(ctx, args)
	case "edit", "e":
		return c.runEdit(ctx, args)
	case "rm", "delete":
		return c.runRemove(ctx, args)
	case "ls", "list":
		c.render(c.editor.Sets())
		return nil
	case "stats":
		c.runStats()
		return nil
	case "history":
		return c.runHistory(ctx, args)
	case "refresh":
		c.editor.Refresh()
		c.io.Println("Refreshing...")
		return nil
	case "help", "?":
		c.out.Lock()
		defer c.out.Unlock()
		PrintHelp(c.io)
		return nil
	case "quit", "exit", "q":
		return ErrQuit
	default:
		return fmt.Errorf("unknown command %q, type 'help'", cmd)
	}
}

// track remembers h so drain can wait for it.
func (c *Cli) track(h *mutation.Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	live := c.handles[:0]
	for _, prev := range c.handles {
		select {
		case <-prev.Done():
		default:
			live = append(live, prev)
		}
	}
	c.handles = append(live, h)
}

// drain waits for changes still in flight so they are not cancelled on exit.
func (c *Cli) drain(ctx context.Context) error {
	c.mu.Lock()
	handles := c.handles
	c.handles = nil
	c.mu.Unlock()

	if n := c.editor.Pending(); n > 0 {
		c.io.Printf("Waiting for %d pending change(s)...\n", n)
	}

	ctx, cancel := context.WithTimeout(ctx, c.drainTimeout)
	defer cancel()

	for _, h := range handles {
		select {
		case <-h.Done():
		case <-ctx.Done():
			return fmt.Errorf("pending changes not saved: %w", ctx.Err())
		}
	}
	return c.editor.Sync(ctx)
}

// resolve finds a set of the session by its displayed id.
func (c *Cli) resolve(arg string) (models.SetID, error) {
	for _, s := range c.editor.Sets() {
		if s.ID.String() == arg {
			return s.ID, nil
		}
	}
	return models.SetID{}, fmt.Errorf("no set %q in this session", arg)
}
