package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func TestClient_Lock(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, filepath.Join(".remindme", "git.lock"), nil)

	unlock, err := client.Lock(context.Background())
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}

	lockPath := filepath.Join(tmpDir, ".remindme", "git.lock")
	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		t.Error("Lock file not created")
	}

	unlock()

	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Error("Lock file not removed after unlock")
	}
}

func TestClient_LockTimeout(t *testing.T) {
	client := NewClient(t.TempDir(), "", nil)
	client.LockTimeout = 30 * time.Millisecond

	unlock, err := client.Lock(context.Background())
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	defer unlock()

	_, err = client.Lock(context.Background())
	if !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
}

func TestClient_LockCancelled(t *testing.T) {
	client := NewClient(t.TempDir(), "", nil)
	client.LockTimeout = 0

	unlock, err := client.Lock(context.Background())
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if _, err := client.Lock(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestClient_InitAddCommit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	ctx := context.Background()
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, "", nil)

	if err := client.Init(ctx); err != nil {
		t.Fatalf("Failed to init: %v", err)
	}
	if !client.IsRepo(ctx) {
		t.Fatal("expected work tree after init")
	}
	for _, kv := range [][2]string{{"user.email", "test@example.com"}, {"user.name", "Test"}} {
		if _, err := client.Run(ctx, "config", kv[0], kv[1]); err != nil {
			t.Fatal(err)
		}
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "note.md"), []byte("hi\n"), 0644); err != nil {
		t.Fatal(err)
	}
	staged, err := client.HasStaged(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if staged {
		t.Error("untracked file must not count as staged")
	}

	if err := client.Add(ctx, "note.md"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if staged, _ := client.HasStaged(ctx); !staged {
		t.Error("expected staged change after add")
	}
	if err := client.Commit(ctx, FormatCommitMessage(CommitTypeFeat, "", "add note", "", "")); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if staged, _ := client.HasStaged(ctx); staged {
		t.Error("expected clean index after commit")
	}
}
