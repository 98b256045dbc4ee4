package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/liftlog/internal/client/editor"
	"github.com/iudanet/liftlog/internal/client/iocli"
	"github.com/iudanet/liftlog/internal/client/remote"
	"github.com/iudanet/liftlog/internal/models"
)

var testTime = time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeServer хранит подходы в памяти и отдает их через ClientMock
type fakeServer struct {
	sets   []models.Set
	nextID int
	mu     sync.Mutex
}

func newFakeServer(sets ...models.Set) *fakeServer {
	return &fakeServer{sets: sets, nextID: 100}
}

func (f *fakeServer) client() *remote.ClientMock {
	return &remote.ClientMock{
		CreateSetFunc: func(ctx context.Context, sessionID int64, in models.SetInput) (models.Set, error) {
			f.mu.Lock()
			defer f.mu.Unlock()

			f.nextID++
			s := models.Set{
				ID:         models.RemoteID(strconv.Itoa(f.nextID)),
				SessionID:  sessionID,
				ExerciseID: in.ExerciseID,
				Weight:     in.Weight,
				Reps:       in.Reps,
				Note:       in.Note,
				CreatedAt:  testTime,
			}
			f.sets = append([]models.Set{s}, f.sets...)
			return s.Clone(), nil
		},
		UpdateSetFunc: func(ctx context.Context, sessionID int64, id models.SetID, u models.SetUpdate) (models.Set, error) {
			f.mu.Lock()
			defer f.mu.Unlock()

			for i, s := range f.sets {
				if s.ID == id {
					f.sets[i] = u.Apply(s)
					return f.sets[i].Clone(), nil
				}
			}
			return models.Set{}, remote.NotFoundError("set not found")
		},
		DeleteSetFunc: func(ctx context.Context, sessionID int64, id models.SetID) error {
			f.mu.Lock()
			defer f.mu.Unlock()

			for i, s := range f.sets {
				if s.ID == id {
					f.sets = append(f.sets[:i:i], f.sets[i+1:]...)
					return nil
				}
			}
			return remote.NotFoundError("set not found")
		},
		ListSetsFunc: func(ctx context.Context, filter models.SetFilter) ([]models.Set, error) {
			f.mu.Lock()
			defer f.mu.Unlock()

			var out []models.Set
			for _, s := range f.sets {
				if filter.SessionID != 0 && s.SessionID != filter.SessionID {
					continue
				}
				if filter.ExerciseID != 0 && s.ExerciseID != filter.ExerciseID {
					continue
				}
				out = append(out, s.Clone())
			}
			return out, nil
		},
	}
}

func (f *fakeServer) snapshot() []models.Set {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Set(nil), f.sets...)
}

func warmupSet() models.Set {
	return models.Set{
		ID:         models.RemoteID("987"),
		SessionID:  1,
		ExerciseID: 42,
		Weight:     models.Float(100),
		Note:       "warmup",
		CreatedAt:  testTime,
	}
}

// runScript прогоняет CLI по input и возвращает весь вывод
func runScript(t *testing.T, client remote.Client, input string) string {
	t.Helper()

	session, err := editor.NewSession(1, client, setupTestLogger())
	require.NoError(t, err)

	var out bytes.Buffer
	c := New(iocli.New(strings.NewReader(input), &out), session, setupTestLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, c.Run(ctx))
	session.Close()

	return out.String()
}

func TestRenderSets(t *testing.T) {
	sets := []models.Set{
		{ID: models.LocalID(1), SessionID: 1, ExerciseID: 42, Weight: models.Float(102.5), Reps: models.Int(5)},
		warmupSet(),
		{ID: models.RemoteID("988"), SessionID: 1, ExerciseID: 7, Reps: models.Int(12)},
	}

	tests := []struct {
		name string
		sets []models.Set
	}{
		{name: "sets_table", sets: sets},
		{name: "empty_table"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			renderSets(&buf, tt.sets, models.Summarize(tt.sets))

			g := goldie.New(t,
				goldie.WithFixtureDir("testdata/golden"),
				goldie.WithNameSuffix(".golden"),
			)
			g.Assert(t, tt.name, buf.Bytes())
		})
	}
}

func TestCli_Run_Edits(t *testing.T) {
	srv := newFakeServer(warmupSet())

	out := runScript(t, srv.client(), strings.Join([]string{
		"add 42 102.5 5 top set",
		"edit 987 reps=8 note=easy warmup",
		"rm 987",
		"stats",
	}, "\n"))

	assert.Contains(t, out, "Session 1\n")
	assert.Contains(t, out, "Saved set 101\n")
	assert.Contains(t, out, "Updated set 987\n")
	assert.Contains(t, out, "Deleted set 987\n")

	sets := srv.snapshot()
	require.Len(t, sets, 1)
	assert.Equal(t, models.RemoteID("101"), sets[0].ID)
	assert.Equal(t, "top set", sets[0].Note)
	assert.Equal(t, 102.5, *sets[0].Weight)
	assert.Equal(t, 5, *sets[0].Reps)
}

func TestCli_Run_Failures(t *testing.T) {
	tests := []struct {
		setup  func(c *remote.ClientMock)
		name   string
		input  string
		want   []string
		wantNo []string
	}{
		{
			name: "rejected insert lists fields",
			setup: func(c *remote.ClientMock) {
				c.CreateSetFunc = func(context.Context, int64, models.SetInput) (models.Set, error) {
					return models.Set{}, remote.ValidationError("invalid set", map[string]string{
						"weight": "must not be negative",
						"reps":   "must be positive",
					})
				}
			},
			input: "add 42 -5 0",
			want: []string{
				"Rejected insert of set temp-",
				"  reps: must be positive\n  weight: must not be negative\n",
			},
			wantNo: []string{"Saved set"},
		},
		{
			name: "network failure rolls back",
			setup: func(c *remote.ClientMock) {
				c.CreateSetFunc = func(context.Context, int64, models.SetInput) (models.Set, error) {
					return models.Set{}, remote.NetworkError(errors.New("connection refused"))
				}
			},
			input: "add 42 100 5",
			want:  []string{"Could not insert set temp-", "change undone", "connection refused"},
		},
		{
			name: "vanished set is removed",
			setup: func(c *remote.ClientMock) {
				c.UpdateSetFunc = func(context.Context, int64, models.SetID, models.SetUpdate) (models.Set, error) {
					return models.Set{}, remote.NotFoundError("set not found")
				}
			},
			input: "edit 987 weight=110",
			want:  []string{"Set 987 no longer exists, removed\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeServer(warmupSet()).client()
			tt.setup(client)

			out := runScript(t, client, tt.input)

			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.wantNo {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestCli_Run_History(t *testing.T) {
	other := warmupSet()
	other.ID = models.RemoteID("500")
	other.SessionID = 2
	srv := newFakeServer(warmupSet(), other)

	out := runScript(t, srv.client(), "history 42")

	assert.Contains(t, out, "=== Exercise 42 ===\n")
	assert.Contains(t, out, "500")
	assert.Contains(t, out, "2 sets, 0 reps, volume 0 kg, top weight 100 kg\n")
}

func TestCli_Run_LoadError(t *testing.T) {
	client := newFakeServer().client()
	client.ListSetsFunc = func(context.Context, models.SetFilter) ([]models.Set, error) {
		return nil, remote.ServerError(500, "boom")
	}

	session, err := editor.NewSession(1, client, setupTestLogger())
	require.NoError(t, err)
	defer session.Close()

	c := New(iocli.New(strings.NewReader(""), io.Discard), session, setupTestLogger())
	err = c.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, remote.ErrServer)
}

func TestCli_Exec(t *testing.T) {
	session, err := editor.NewSession(1, newFakeServer(warmupSet()).client(), setupTestLogger())
	require.NoError(t, err)
	defer session.Close()
	require.NoError(t, session.Load(context.Background()))

	var out bytes.Buffer
	c := New(iocli.New(strings.NewReader(""), &out), session, setupTestLogger())

	tests := []struct {
		wantErr error
		name    string
		line    string
		errText string
	}{
		{name: "empty line", line: "   "},
		{name: "help", line: "help"},
		{name: "list", line: "ls"},
		{name: "quit", line: "quit", wantErr: ErrQuit},
		{name: "exit alias", line: "exit", wantErr: ErrQuit},
		{name: "unknown command", line: "jump", errText: `unknown command "jump"`},
		{name: "add without exercise", line: "add", errText: "missing exercise"},
		{name: "add with bad exercise", line: "add squat", errText: "invalid exercise"},
		{name: "add with bad weight", line: "add 42 heavy", errText: `invalid weight "heavy"`},
		{name: "add with bad reps", line: "add 42 100 many", errText: `invalid reps "many"`},
		{name: "edit without changes", line: "edit 987", errText: "nothing to change"},
		{name: "edit unknown set", line: "edit 1 reps=5", errText: `no set "1"`},
		{name: "edit unknown field", line: "edit 987 tempo=3", errText: `unknown field "tempo"`},
		{name: "edit malformed argument", line: "edit 987 reps", errText: `invalid argument "reps"`},
		{name: "remove unknown set", line: "rm temp-9", errText: `no set "temp-9"`},
		{name: "remove without id", line: "rm", errText: "expected one id"},
		{name: "history without exercise", line: "history", errText: "expected one exercise"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Exec(context.Background(), tt.line)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errText)
			default:
				assert.NoError(t, err)
			}
		})
	}

	assert.Contains(t, out.String(), "Commands:")
	assert.Contains(t, out.String(), "987")
}

func TestCli_Run_Interactive(t *testing.T) {
	session, err := editor.NewSession(1, newFakeServer(warmupSet()).client(), setupTestLogger())
	require.NoError(t, err)
	defer session.Close()

	lines := []string{"stats", "bogus", "quit", "never read"}
	var (
		printed []string
		mu      sync.Mutex
	)
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		printed = append(printed, s)
	}

	mockIO := &iocli.IOMock{
		IsInteractiveFunc: func() bool { return true },
		PrintfFunc: func(format string, a ...any) {
			record(fmt.Sprintf(format, a...))
		},
		PrintlnFunc: func(a ...any) {
			record(fmt.Sprintln(a...))
		},
		WriteFunc: func(p []byte) (int, error) {
			record(string(p))
			return len(p), nil
		},
	}
	mockIO.ReadInputFunc = func(prompt string) (string, error) {
		assert.Equal(t, "> ", prompt)
		n := len(mockIO.ReadInputCalls()) - 1
		return lines[n], nil
	}

	c := New(mockIO, session, setupTestLogger())
	require.NoError(t, c.Run(context.Background()))

	assert.Len(t, mockIO.ReadInputCalls(), 3)

	mu.Lock()
	defer mu.Unlock()
	all := strings.Join(printed, "")
	assert.Contains(t, all, "Type 'help' for commands.\n")
	assert.Contains(t, all, "1 sets, 0 reps, volume 0 kg, top weight 100 kg\n")
	assert.Contains(t, all, "Error: unknown command \"bogus\"")
}

func TestCli_RenderDoesNotSplitHistory(t *testing.T) {
	server := newFakeServer(warmupSet())
	session, err := editor.NewSession(1, server.client(), setupTestLogger())
	require.NoError(t, err)
	t.Cleanup(session.Close)

	var (
		mu     sync.Mutex
		chunks []string
	)
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		chunks = append(chunks, s)
	}
	headed := make(chan struct{})
	mockIO := &iocli.IOMock{
		PrintfFunc: func(format string, a ...any) {
			line := fmt.Sprintf(format, a...)
			record(line)
			if strings.HasPrefix(line, "=== Exercise") {
				close(headed)
				// окно между заголовком и таблицей
				time.Sleep(50 * time.Millisecond)
			}
		},
		WriteFunc: func(p []byte) (int, error) {
			record(string(p))
			return len(p), nil
		},
	}
	c := New(mockIO, session, setupTestLogger())

	done := make(chan error, 1)
	go func() {
		done <- c.Exec(context.Background(), "history 42")
	}()
	<-headed
	c.render(nil)
	require.NoError(t, <-done)

	var history, empty bytes.Buffer
	renderSets(&history, []models.Set{warmupSet()}, models.Summarize([]models.Set{warmupSet()}))
	renderSets(&empty, nil, models.Summarize(nil))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"=== Exercise 42 ===\n", history.String(), empty.String()}, chunks)
}
