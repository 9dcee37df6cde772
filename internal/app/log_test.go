package app

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestBbHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		opID    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			opID:    "op-123",
			level:   slog.LevelInfo,
			message: "folder committed",
			want:    "2024-06-15T14:30:45Z\tINFO\top-123\tfolder committed\n",
		},
		{
			name:    "error with attrs",
			opID:    "op-123",
			level:   slog.LevelError,
			message: "folder failed",
			attrs: []slog.Attr{
				slog.String("folder", "/data/docs"),
				slog.Int("added", 3),
			},
			want: "2024-06-15T14:30:45Z\tERROR\top-123\tfolder failed\tfolder=/data/docs\tadded=3\n",
		},
		{
			name:    "warn message",
			opID:    "op-9",
			level:   slog.LevelWarn,
			message: "file skipped",
			attrs:   []slog.Attr{slog.String("reason", "permission denied")},
			want:    "2024-06-15T14:30:45Z\tWARN\top-9\tfile skipped\treason=permission denied\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			h := &bbHandler{w: &buf, opID: tt.opID}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			r.AddAttrs(tt.attrs...)

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBbHandler_WithAttrs(t *testing.T) {
	t.Run("pre-set attrs precede record attrs", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		var h slog.Handler = &bbHandler{w: &buf, opID: "op-1"}
		h = h.WithAttrs([]slog.Attr{slog.String("location", "nas")})

		ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)
		r := slog.NewRecord(ts, slog.LevelInfo, "snapshot initialized", 0)
		r.AddAttrs(slog.Int("files", 12))

		if err := h.Handle(context.Background(), r); err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
		want := "2024-06-15T14:30:45Z\tINFO\top-1\tsnapshot initialized\tlocation=nas\tfiles=12\n"
		if got := buf.String(); got != want {
			t.Errorf("Handle() = %q, want %q", got, want)
		}
	})

	t.Run("does not mutate the original handler", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		base := &bbHandler{w: &buf, opID: "op-1"}
		_ = base.WithAttrs([]slog.Attr{slog.String("extra", "x")})

		ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)
		if err := base.Handle(context.Background(), slog.NewRecord(ts, slog.LevelInfo, "msg", 0)); err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
		if strings.Contains(buf.String(), "extra=") {
			t.Errorf("base handler picked up derived attrs: %q", buf.String())
		}
	})
}
