package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"
)

var skeletons = template.Must(template.New("migration").Parse(`
{{- define "up.sql" -}}
-- Migration: {{.Name}}
-- Created: {{.Timestamp}}
-- Description: {{.Description}}

-- Write your UP migration SQL here

{{end}}
{{- define "down.sql" -}}
-- Migration: {{.Name}} (Rollback)
-- Created: {{.Timestamp}}

-- Write your DOWN migration SQL here

{{end}}`))

// versionWidth matches golang-migrate's "create -seq" numbering.
const versionWidth = 6

// MigrationFile describes a freshly created up/down pair.
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration writes empty up and down files numbered one past the
// highest version already in migrationsDir.
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, errors.New("migration name must contain letters or digits")
	}
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}
	existing, err := ListMigrations(migrationsDir)
	if err != nil {
		return nil, err
	}

	highest := 0
	for _, base := range existing {
		highest = max(highest, versionOf(base))
	}
	version := fmt.Sprintf("%0*d", versionWidth, highest+1)
	stem := filepath.Join(migrationsDir, version+"_"+slug)

	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		Timestamp:   time.Now().Format(time.RFC3339),
		UpPath:      stem + ".up.sql",
		DownPath:    stem + ".down.sql",
	}
	if err := render(mf.UpPath, "up.sql", mf); err != nil {
		return nil, err
	}
	if err := render(mf.DownPath, "down.sql", mf); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

// render refuses to overwrite an existing file.
func render(path, skeleton string, mf *MigrationFile) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := skeletons.ExecuteTemplate(f, skeleton, mf); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeName keeps lower-case letters and digits. Runs of spaces,
// dashes and underscores become one underscore; anything else is dropped.
func sanitizeName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return ' '
		}
		return -1
	}, strings.ToLower(name))
	return strings.Join(strings.Fields(cleaned), "_")
}

func versionOf(base string) int {
	prefix, _, _ := strings.Cut(base, "_")
	v, _ := strconv.Atoi(prefix)
	return v
}

// ListMigrations returns the sorted base names of the migrations in
// migrationsDir. A missing directory has none.
func ListMigrations(migrationsDir string) ([]string, error) {
	names, err := ListMigrationsFS(os.DirFS(migrationsDir))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	return names, err
}

// ListMigrationsFS does the same for the root of fsys.
func ListMigrationsFS(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok && !entry.IsDir() {
			names = append(names, base)
		}
	}
	slices.Sort(names)
	return names, nil
}
