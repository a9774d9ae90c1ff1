package platform_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/remindme/internal/platform"
	"github.com/aretw0/remindme/pkg/adapters/fs"
	"github.com/aretw0/remindme/pkg/adapters/memory"
	"github.com/aretw0/remindme/pkg/core"
	"github.com/aretw0/remindme/pkg/git"
	"github.com/aretw0/remindme/pkg/reminder"
)

var monday = func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) }

func TestInit(t *testing.T) {
	ctx := context.Background()

	t.Run("AutoInit=true Creates Directory and Git Repo", func(t *testing.T) {
		if _, err := exec.LookPath("git"); err != nil {
			t.Skip("git not installed")
		}
		vaultPath := filepath.Join(t.TempDir(), "vault")

		repo, err := platform.Init(ctx, vaultPath, platform.WithAutoInit(true))
		if err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		fsRepo, ok := repo.(*fs.Repository)
		if !ok {
			t.Fatalf("Expected fs repository")
		}
		if fsRepo.Path != vaultPath {
			t.Errorf("Expected path %s, got %s", vaultPath, fsRepo.Path)
		}
		if _, err := os.Stat(filepath.Join(vaultPath, ".git")); os.IsNotExist(err) {
			t.Errorf(".git directory not found")
		}
	})

	t.Run("AutoInit=false Fails if Directory Missing", func(t *testing.T) {
		vaultPath := filepath.Join(t.TempDir(), "missing")
		if _, err := platform.Init(ctx, vaultPath); err == nil {
			t.Error("Expected failure for missing directory when AutoInit=false")
		}
	})

	t.Run("Versioning Disabled Does Not Initialize Git", func(t *testing.T) {
		vaultPath := filepath.Join(t.TempDir(), "gitless_vault")

		repo, err := platform.Init(ctx, vaultPath, platform.WithAutoInit(true), platform.WithVersioning(false))
		if err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(vaultPath, ".git")); !os.IsNotExist(err) {
			t.Errorf(".git must not exist in a gitless vault")
		}
		state := repo.(*fs.Repository).State().(fs.RepositoryState)
		if !state.Gitless {
			t.Error("expected gitless state")
		}
	})

	t.Run("Existing Folder Without Git Is Gitless", func(t *testing.T) {
		repo, err := platform.Init(ctx, t.TempDir())
		if err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		if !repo.(*fs.Repository).State().(fs.RepositoryState).Gitless {
			t.Error("expected gitless detection")
		}
	})

	t.Run("Watch Debounce Reaches The Watcher", func(t *testing.T) {
		vaultPath := t.TempDir()
		repo, err := platform.Init(ctx, vaultPath, platform.WithWatchDebounce(400*time.Millisecond))
		if err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		wctx, cancel := context.WithCancel(ctx)
		defer cancel()
		events, err := repo.(*fs.Repository).Watch(wctx, "")
		if err != nil {
			t.Fatal(err)
		}
		start := time.Now()
		if err := os.WriteFile(filepath.Join(vaultPath, "inbox.md"), []byte("/remind a"), 0644); err != nil {
			t.Fatal(err)
		}
		select {
		case <-events:
			if elapsed := time.Since(start); elapsed < 400*time.Millisecond {
				t.Errorf("event after %v, before the quiet period", elapsed)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for event")
		}
	})

	t.Run("Injected Repository Is Used", func(t *testing.T) {
		mem := memory.NewRepository()
		repo, err := platform.Init(ctx, "ignored", platform.WithRepository(mem))
		if err != nil {
			t.Fatal(err)
		}
		if repo != mem {
			t.Error("expected injected repository")
		}
	})
}

func TestNew_RunOnFilesystem(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	inbox := "---\ntitle: Inbox\n---\n# Inbox\n- /remind water plants @ tomorrow\n"
	if err := os.WriteFile(filepath.Join(dir, "inbox.md"), []byte(inbox), 0644); err != nil {
		t.Fatal(err)
	}

	v, err := platform.New(ctx, dir,
		platform.WithDailyNotes("daily", ""),
		platform.WithClock(monday),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	report, err := v.Runner.Run(ctx, "")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Err() != nil {
		t.Fatalf("unexpected failures: %v", report.Err())
	}
	if report.Source != "inbox" {
		t.Errorf("expected active note inbox, got %q", report.Source)
	}

	daily, err := os.ReadFile(filepath.Join(dir, "daily", "2024-01-02.md"))
	if err != nil {
		t.Fatalf("daily note not created: %v", err)
	}
	if want := "# 2024-01-02\n\n### Reminder ###\n- [ ] water plants \n"; string(daily) != want {
		t.Errorf("daily note = %q, want %q", daily, want)
	}

	got, _ := os.ReadFile(filepath.Join(dir, "inbox.md"))
	if want := "---\ntitle: Inbox\n---\n# Inbox\n~~- /remind water plants @ tomorrow~~\n"; string(got) != want {
		t.Errorf("inbox = %q, want %q", got, want)
	}
}

func TestNew_CommitsRun(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	ctx := context.Background()
	dir := t.TempDir()

	client := git.NewClient(dir, "", nil)
	if err := client.Init(ctx); err != nil {
		t.Fatal(err)
	}
	for _, kv := range [][2]string{{"user.email", "test@example.com"}, {"user.name", "Test"}} {
		if _, err := client.Run(ctx, "config", kv[0], kv[1]); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "inbox.md"), []byte("/remind a @ tomorrow\n"), 0644); err != nil {
		t.Fatal(err)
	}

	v, err := platform.New(ctx, dir, platform.WithClock(monday), platform.WithActiveNote("inbox"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	report, err := v.Runner.Run(ctx, "")
	if err != nil || report.Err() != nil {
		t.Fatalf("Run failed: %v / %v", err, report.Err())
	}
	if !report.Committed {
		t.Fatal("expected the run to be committed")
	}

	msg, err := client.Run(ctx, "log", "-1", "--format=%B")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(msg, "feat(reminders): route 1 reminder from inbox") {
		t.Errorf("unexpected commit message %q", msg)
	}
	if !strings.Contains(msg, "Run-Id: "+report.RunID) {
		t.Errorf("commit message lacks run id: %q", msg)
	}
}

func TestNew_WithoutDateResolver(t *testing.T) {
	mem := memory.NewRepository(core.Note{ID: "inbox", Content: "/remind a"})
	v, err := platform.New(context.Background(), "", platform.WithRepository(mem), platform.WithoutDateResolver())
	if err != nil {
		t.Fatal(err)
	}
	if v.Resolver != nil {
		t.Error("expected no resolver")
	}
	_, err = v.Runner.Run(context.Background(), "inbox")
	if !errors.Is(err, reminder.ErrMissingDateCapability) {
		t.Errorf("expected ErrMissingDateCapability, got %v", err)
	}
}

func TestNew_InvalidReminderConfig(t *testing.T) {
	_, err := platform.New(context.Background(), "",
		platform.WithRepository(memory.NewRepository()),
		platform.WithReminderConfig(reminder.Config{Triggers: []string{"/re mind"}}),
	)
	if err == nil {
		t.Error("expected invalid config error")
	}
}
