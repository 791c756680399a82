package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadMigrations reads the .surql files in dir in lexical order.
// Files named seed.surql carry sample data, not schema, and are
// skipped.
func LoadMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".surql") && name != "seed.surql" {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	migrations := make([]string, 0, len(files))
	for _, name := range files {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		migrations = append(migrations, string(content))
	}
	return migrations, nil
}

// Migrate applies the migrations in dir against db. DEFINE statements
// are idempotent in SurrealDB, so running at every startup is safe.
// The unique indexes defined here are what the repositories' conflict
// handling (duplicate codes, duplicate likes, taken nicknames) relies
// on.
func Migrate(ctx context.Context, db Database, dir string) error {
	migrations, err := LoadMigrations(dir)
	if err != nil {
		return err
	}
	for i, m := range migrations {
		if err := db.Execute(ctx, m, nil); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
