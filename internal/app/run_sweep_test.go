package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dev-tams/sweepkit/internal/config"
)

func localSweepConfig(t *testing.T, patterns []string) (*config.Config, string) {
	t.Helper()
	base := t.TempDir()

	for _, rel := range []string{"img/a.png", "img/b.jpg", "logs/app.log", "readme.txt"} {
		p := filepath.Join(base, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	return &config.Config{
		Version:   1,
		Provider:  "local",
		LocalPath: base,
		Patterns:  patterns,
		Threads:   2,
	}, base
}

func TestRunSweepDeletesMatchingObjects(t *testing.T) {
	cfg, base := localSweepConfig(t, []string{"\\.log$", "\\.jpg$"})

	if err := RunSweep(context.Background(), cfg, zerolog.Nop(), false); err != nil {
		t.Fatalf("RunSweep: %v", err)
	}

	for rel, wantGone := range map[string]bool{
		"img/a.png":    false,
		"img/b.jpg":    true,
		"logs/app.log": true,
		"readme.txt":   false,
	} {
		_, err := os.Stat(filepath.Join(base, filepath.FromSlash(rel)))
		gone := os.IsNotExist(err)
		if gone != wantGone {
			t.Fatalf("%s: gone=%v, want %v", rel, gone, wantGone)
		}
	}
}

func TestRunSweepForceDryRunLeavesEverything(t *testing.T) {
	cfg, base := localSweepConfig(t, []string{".*"})

	if err := RunSweep(context.Background(), cfg, zerolog.Nop(), true); err != nil {
		t.Fatalf("RunSweep: %v", err)
	}

	for _, rel := range []string{"img/a.png", "img/b.jpg", "logs/app.log", "readme.txt"} {
		if _, err := os.Stat(filepath.Join(base, filepath.FromSlash(rel))); err != nil {
			t.Fatalf("%s should survive a forced dry-run: %v", rel, err)
		}
	}
}

func TestRunSweepWithoutPatternsDeletesNothing(t *testing.T) {
	cfg, base := localSweepConfig(t, nil)

	if err := RunSweep(context.Background(), cfg, zerolog.Nop(), false); err != nil {
		t.Fatalf("RunSweep: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "readme.txt")); err != nil {
		t.Fatalf("expected readme.txt to survive: %v", err)
	}
}

func TestRunSweepRejectsInvalidConfig(t *testing.T) {
	cfg := &config.Config{Version: 1, Provider: "s3", Threads: 4}
	if err := RunSweep(context.Background(), cfg, zerolog.Nop(), false); err == nil {
		t.Fatal("expected validation error for missing bucket")
	}
}

func TestNotificationContextSurvivesParentCancel(t *testing.T) {
	parent, stop := context.WithCancel(context.Background())
	stop()

	ctx, cancel := notificationContext(parent)
	defer cancel()

	// A canceled sweep should still be able to send its failure
	// notification within the timeout window.
	if err := ctx.Err(); err != nil {
		t.Fatalf("notification context unexpectedly done: %v", err)
	}

	dl, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected a deadline")
	}
	if rem := time.Until(dl); rem <= 0 || rem > notificationTimeout+time.Second {
		t.Fatalf("unexpected deadline window: %s", rem)
	}
}
