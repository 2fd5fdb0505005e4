package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/tailored-agentic-units/supportchat/observability"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  string
	}{
		{name: "trace range", level: 1, want: "TRACE"},
		{name: "verbose maps to DEBUG", level: observability.LevelVerbose, want: "DEBUG"},
		{name: "info maps to INFO", level: observability.LevelInfo, want: "INFO"},
		{name: "warning maps to WARN", level: observability.LevelWarning, want: "WARN"},
		{name: "error maps to ERROR", level: observability.LevelError, want: "ERROR"},
		{name: "fatal range", level: 21, want: "FATAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  slog.Level
	}{
		{name: "verbose", level: observability.LevelVerbose, want: slog.LevelDebug},
		{name: "info", level: observability.LevelInfo, want: slog.LevelInfo},
		{name: "warning", level: observability.LevelWarning, want: slog.LevelWarn},
		{name: "error", level: observability.LevelError, want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.SlogLevel(); got != tt.want {
				t.Errorf("Level(%d).SlogLevel() = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestEmit(t *testing.T) {
	rec := observability.NewRecorder()

	observability.Emit(context.Background(), rec, "chat.turn.start", observability.LevelInfo, "chat.Submit",
		map[string]any{"turn": 1})

	events := rec.Events()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	e := events[0]
	if e.Type != "chat.turn.start" || e.Source != "chat.Submit" || e.Level != observability.LevelInfo {
		t.Errorf("unexpected event %+v", e)
	}
	if e.Timestamp.IsZero() {
		t.Error("Emit did not stamp the event")
	}
	if e.Data["turn"] != 1 {
		t.Errorf("got data %v", e.Data)
	}
}

func TestEmit_NilObserver(t *testing.T) {
	observability.Emit(context.Background(), nil, "x", observability.LevelInfo, "test", nil)
}

func TestNoOpObserver(t *testing.T) {
	var obs observability.Observer = observability.NoOpObserver{}
	obs.OnEvent(context.Background(), observability.Event{Type: "test.event"})
}

func TestMultiObserver(t *testing.T) {
	rec1 := observability.NewRecorder()
	rec2 := observability.NewRecorder()

	multi := observability.NewMultiObserver(rec1, nil, rec2)
	multi.OnEvent(context.Background(), observability.Event{Type: "test.event"})

	if rec1.Count("test.event") != 1 {
		t.Errorf("observer 1 received %d events, want 1", rec1.Count("test.event"))
	}
	if rec2.Count("test.event") != 1 {
		t.Errorf("observer 2 received %d events, want 1", rec2.Count("test.event"))
	}
}

func TestRecorder_Order(t *testing.T) {
	rec := observability.NewRecorder()
	ctx := context.Background()

	for _, typ := range []observability.EventType{"a", "b", "a"} {
		rec.OnEvent(ctx, observability.Event{Type: typ})
	}

	types := rec.Types()
	want := []observability.EventType{"a", "b", "a"}
	if len(types) != len(want) {
		t.Fatalf("got %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d: got %q, want %q", i, types[i], want[i])
		}
	}
	if rec.Count("a") != 2 {
		t.Errorf("got Count(a) = %d, want 2", rec.Count("a"))
	}
}

func TestRecorder_Concurrent(t *testing.T) {
	rec := observability.NewRecorder()
	const n = 100

	var wg sync.WaitGroup
	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			rec.OnEvent(context.Background(), observability.Event{Type: "tick"})
		}()
	}
	wg.Wait()

	if rec.Count("tick") != n {
		t.Errorf("got %d events, want %d", rec.Count("tick"), n)
	}
}

func TestSlogObserver_LevelMapping(t *testing.T) {
	tests := []struct {
		name      string
		level     observability.Level
		minLevel  slog.Level
		expectLog bool
	}{
		{name: "verbose at debug handler", level: observability.LevelVerbose, minLevel: slog.LevelDebug, expectLog: true},
		{name: "verbose at info handler", level: observability.LevelVerbose, minLevel: slog.LevelInfo, expectLog: false},
		{name: "info at warn handler", level: observability.LevelInfo, minLevel: slog.LevelWarn, expectLog: false},
		{name: "error at error handler", level: observability.LevelError, minLevel: slog.LevelError, expectLog: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: tt.minLevel}))

			observability.NewSlogObserver(logger).OnEvent(context.Background(), observability.Event{
				Type:   "test.event",
				Level:  tt.level,
				Source: "test",
			})

			if hasOutput := buf.Len() > 0; hasOutput != tt.expectLog {
				t.Errorf("log output = %v, want %v (buf: %q)", hasOutput, tt.expectLog, buf.String())
			}
		})
	}
}

func TestSlogObserver_Attributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	observability.NewSlogObserver(logger).OnEvent(context.Background(), observability.Event{
		Type:   "transport.request.error",
		Level:  observability.LevelWarning,
		Source: "transport.Send",
		Data: map[string]any{
			"status": 502,
			"error":  errors.New("bad gateway"),
		},
	})

	output := buf.String()
	for _, want := range []string{"transport.request.error", "source=transport.Send", "status=502", `error="bad gateway"`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestRegistry_GetObserver(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "noop exists", key: "noop"},
		{name: "slog exists", key: "slog"},
		{name: "unknown fails", key: "nonexistent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, err := observability.GetObserver(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetObserver(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, observability.ErrUnknownObserver) {
				t.Errorf("got %v, want ErrUnknownObserver", err)
			}
			if !tt.wantErr && obs == nil {
				t.Errorf("GetObserver(%q) returned nil observer", tt.key)
			}
		})
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	rec := observability.NewRecorder()
	observability.RegisterObserver("test-recorder", rec)

	obs, err := observability.GetObserver("test-recorder")
	if err != nil {
		t.Fatalf("GetObserver failed: %v", err)
	}

	obs.OnEvent(context.Background(), observability.Event{Type: "test.event"})

	if rec.Count("test.event") != 1 {
		t.Errorf("received %d events, want 1", rec.Count("test.event"))
	}
}
