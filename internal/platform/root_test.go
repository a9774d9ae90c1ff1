package platform

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFindRoot(t *testing.T) {
	base := t.TempDir()
	mkdir := func(parts ...string) string {
		dir := filepath.Join(append([]string{base}, parts...)...)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		return dir
	}

	// system/           .remindme marker
	//   notes/daily/
	// git/              .git marker
	//   inner/          remindme.yaml marker, nearer than git/
	//     journal/
	// none/
	system := mkdir("system", DefaultSystemDir)
	system = filepath.Dir(system)
	daily := mkdir("system", "notes", "daily")
	gitRoot := mkdir("git", ".git")
	gitRoot = filepath.Dir(gitRoot)
	inner := mkdir("git", "inner")
	if err := os.WriteFile(filepath.Join(inner, ConfigFile), []byte("header: '## Todo'\n"), 0644); err != nil {
		t.Fatal(err)
	}
	journal := mkdir("git", "inner", "journal")
	none := mkdir("none")

	tests := []struct {
		name  string
		start string
		want  string
	}{
		{"system dir at start", system, system},
		{"system dir above", daily, system},
		{"config file above", journal, inner},
		{"git dir", gitRoot, gitRoot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.start)
			if err != nil {
				t.Fatalf("FindRoot(%s): %v", tt.start, err)
			}
			if filepath.Clean(got) != filepath.Clean(tt.want) {
				t.Errorf("FindRoot(%s) = %s, want %s", tt.start, got, tt.want)
			}
		})
	}

	t.Run("no marker", func(t *testing.T) {
		got, err := FindRoot(none)
		if err == nil {
			// A marker above the temp dir (e.g. a checkout) is found legitimately.
			if rel, _ := filepath.Rel(got, base); rel == "." || !filepath.IsLocal(rel) {
				t.Errorf("unexpected root %s", got)
			}
			return
		}
		if !errors.Is(err, ErrRootNotFound) {
			t.Errorf("expected ErrRootNotFound, got %v", err)
		}
	})
}
