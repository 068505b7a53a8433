package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrationFiles_Paired(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "files")
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file %q", name)
		}
	}
	if len(ups) == 0 {
		t.Fatal("no up migrations embedded")
	}
	for v := range ups {
		if !downs[v] {
			t.Errorf("migration %s has no down file", v)
		}
	}
}

func TestMigrationFiles_LikesKeyedByPostAndUser(t *testing.T) {
	b, err := fs.ReadFile(migrationFiles, "files/000001_init.up.sql")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(b), "PRIMARY KEY (post_id, user_id)") {
		t.Error("post_likes must be keyed by (post_id, user_id)")
	}
	if strings.Count(string(b), "ON DELETE CASCADE") < 4 {
		t.Error("likes and comments must cascade with their post")
	}
}
