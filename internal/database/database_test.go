package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "memory", path: ":memory:"},
		{name: "nested file", path: filepath.Join(t.TempDir(), "nested", "bee.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			db, err := Open(ctx, tt.path)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer db.Close()

			var fk int
			if err := db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
				t.Fatalf("reading pragma: %v", err)
			}
			if fk != 1 {
				t.Errorf("foreign_keys = %d, want 1", fk)
			}
			if err := (Checker{DB: db}).Check(ctx); err != nil {
				t.Errorf("Check: %v", err)
			}
		})
	}
}
