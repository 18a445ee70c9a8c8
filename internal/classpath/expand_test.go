package classpath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/moltenex-tm/moltenex-loader/internal/errors"
)

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"libs/b.jar", "libs/a.jar", "libs/notes.txt", "libs/nested/c.jar", "game.jar"} {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	at := func(names ...string) []string {
		out := make([]string, len(names))
		for i, n := range names {
			out[i] = filepath.Join(dir, n)
		}
		return out
	}

	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{
			name:  "plain paths kept in order",
			paths: at("game.jar", "missing.jar"),
			want:  at("game.jar", "missing.jar"),
		},
		{
			name:  "star sorted",
			paths: at("libs/*.jar"),
			want:  at("libs/a.jar", "libs/b.jar"),
		},
		{
			name:  "double star",
			paths: at("libs/**/*.jar"),
			want:  at("libs/a.jar", "libs/b.jar", "libs/nested/c.jar"),
		},
		{
			name:  "patterns expand in place",
			paths: at("game.jar", "libs/?.jar", "libs/notes.txt"),
			want:  at("game.jar", "libs/a.jar", "libs/b.jar", "libs/notes.txt"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPaths(tt.paths)
			if err != nil {
				t.Fatalf("ExpandPaths() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExpandPaths() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExpandPathsNoMatch(t *testing.T) {
	_, err := ExpandPaths([]string{filepath.Join(t.TempDir(), "*.jar")})
	if err == nil {
		t.Fatal("ExpandPaths() error = nil, want no-match error")
	}
	var valErr *errors.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("ExpandPaths() error = %T, want *errors.ValidationError", err)
	}
	if valErr.Field != "classpath" {
		t.Errorf("Field = %q, want %q", valErr.Field, "classpath")
	}
}
