package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/iudanet/liftlog/internal/client/mutation"
	"github.com/iudanet/liftlog/internal/models"
)

const (
	addUsage     = "usage: add <exercise> [weight|-] [reps|-] [note...]"
	editUsage    = "usage: edit <id> [weight=N] [reps=N] [note=text...]"
	removeUsage  = "usage: rm <id>"
	historyUsage = "usage: history <exercise>"
)

// PrintHelp prints the command reference.
func PrintHelp(out interface{ Println(a ...any) }) {
	out.Println("Commands:")
	out.Println("  add <exercise> [weight|-] [reps|-] [note...]  record a set")
	out.Println("  edit <id> [weight=N] [reps=N] [note=text...]  change a set")
	out.Println("  rm <id>                                       delete a set")
	out.Println("  ls                                            show the session")
	out.Println("  stats                                         show the summary")
	out.Println("  history <exercise>                            sets of an exercise across sessions")
	out.Println("  refresh                                       reload from the server")
	out.Println("  quit                                          wait for pending changes and exit")
}

func (c *Cli) runAdd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing exercise. %s", addUsage)
	}

	exerciseID, err := parseID(args[0])
	if err != nil {
		return fmt.Errorf("invalid exercise: %w. %s", err, addUsage)
	}
	in := models.SetInput{ExerciseID: exerciseID}

	if len(args) > 1 {
		if in.Weight, err = parseWeight(args[1]); err != nil {
			return err
		}
	}
	if len(args) > 2 {
		if in.Reps, err = parseReps(args[2]); err != nil {
			return err
		}
	}
	if len(args) > 3 {
		in.Note = strings.Join(args[3:], " ")
	}

	h := c.editor.AddSet(ctx, in, mutation.Callbacks{
		OnSuccess: func(s models.Set) {
			c.io.Printf("Saved set %s\n", s.ID)
		},
		OnError: c.reportError,
	})
	c.track(h)
	c.logger.Debug("set added", slog.String("placeholder", h.Target().String()))
	return nil
}

func (c *Cli) runEdit(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("nothing to change. %s", editUsage)
	}

	id, err := c.resolve(args[0])
	if err != nil {
		return err
	}

	var u models.SetUpdate
	for i, arg := range args[1:] {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("invalid argument %q. %s", arg, editUsage)
		}
		switch name {
		case "weight", "w":
			if u.Weight, err = parseWeight(value); err != nil {
				return err
			}
		case "reps", "r":
			if u.Reps, err = parseReps(value); err != nil {
				return err
			}
		case "note", "n":
			// заметка забирает остаток строки
			note := strings.Join(append([]string{value}, args[i+2:]...), " ")
			u.Note = &note
		default:
			return fmt.Errorf("unknown field %q. %s", name, editUsage)
		}
		if u.Note != nil {
			break
		}
	}
	if u.IsEmpty() {
		return fmt.Errorf("nothing to change. %s", editUsage)
	}

	c.track(c.editor.EditSet(ctx, id, u, mutation.Callbacks{
		OnSuccess: func(s models.Set) {
			c.io.Printf("Updated set %s\n", s.ID)
		},
		OnError: c.reportError,
	}))
	return nil
}

func (c *Cli) runRemove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected one id. %s", removeUsage)
	}

	id, err := c.resolve(args[0])
	if err != nil {
		return err
	}

	c.track(c.editor.RemoveSet(ctx, id, mutation.Callbacks{
		OnSuccess: func(models.Set) {
			c.io.Printf("Deleted set %s\n", id)
		},
		OnError: c.reportError,
	}))
	return nil
}

func (c *Cli) runStats() {
	c.out.Lock()
	defer c.out.Unlock()

	s := c.editor.Summary()
	c.io.Println(summaryLine(s))
	if n := c.editor.Pending(); n > 0 {
		c.io.Printf("%d change(s) not saved yet\n", n)
	}
}

func (c *Cli) runHistory(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected one exercise. %s", historyUsage)
	}
	exerciseID, err := parseID(args[0])
	if err != nil {
		return fmt.Errorf("invalid exercise: %w. %s", err, historyUsage)
	}

	coll, err := c.editor.LoadExercise(ctx, exerciseID)
	if err != nil {
		return err
	}

	c.out.Lock()
	defer c.out.Unlock()
	c.io.Printf("=== Exercise %d ===\n", exerciseID)
	sets := coll.Sets()
	renderSets(c.io, sets, models.Summarize(sets))
	return nil
}

// reportError tells the user what happened to a failed change.
func (c *Cli) reportError(err *mutation.Error) {
	switch err.Category() {
	case mutation.Rejected:
		fields := err.Fields()
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)

		var b strings.Builder
		fmt.Fprintf(&b, "Rejected %s of set %s:\n", err.Op, err.Target)
		for _, name := range names {
			fmt.Fprintf(&b, "  %s: %s\n", name, fields[name])
		}
		if len(names) == 0 {
			fmt.Fprintf(&b, "  %v\n", err.Err)
		}
		_, _ = io.WriteString(c.io, b.String())
	case mutation.Vanished:
		c.io.Printf("Set %s no longer exists, removed\n", err.Target)
	default:
		c.io.Printf("Could not %s set %s, change undone: %v\n", err.Op, err.Target, err.Err)
	}
}

func (c *Cli) render(sets []models.Set) {
	c.out.Lock()
	defer c.out.Unlock()
	renderSets(c.io, sets, models.Summarize(sets))
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%q is not a positive number", raw)
	}
	return id, nil
}

// parseWeight возвращает nil для "-"
func parseWeight(raw string) (*float64, error) {
	if raw == "-" {
		return nil, nil
	}
	w, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid weight %q", raw)
	}
	return &w, nil
}

// parseReps возвращает nil для "-"
func parseReps(raw string) (*int, error) {
	if raw == "-" {
		return nil, nil
	}
	r, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid reps %q", raw)
	}
	return &r, nil
}
