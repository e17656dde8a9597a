package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

var (
	upTemplate = template.Must(template.New("up").Parse(`-- Migration: {{.Name}}
-- Created: {{.Timestamp}}
-- Description: {{.Description}}

`))
	downTemplate = template.Must(template.New("down").Parse(`-- Migration: {{.Name}} (rollback)
-- Created: {{.Timestamp}}

`))
)

// MigrationFile is a created up/down pair
type MigrationFile struct {
	Version     int
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration writes an empty up/down pair numbered one past the highest
// existing version in migrationsDir.
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("invalid migration name %q", name)
	}
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(os.DirFS(migrationsDir))
	if err != nil {
		return nil, err
	}
	version := 1
	if n := len(existing); n > 0 {
		version = versionOf(existing[n-1]) + 1
	}

	base := fmt.Sprintf("%06d_%s", version, slug)
	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		Timestamp:   time.Now().Format(time.RFC3339),
		UpPath:      filepath.Join(migrationsDir, base+upSuffix),
		DownPath:    filepath.Join(migrationsDir, base+downSuffix),
	}

	if err := writeTemplate(mf.UpPath, upTemplate, mf); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := writeTemplate(mf.DownPath, downTemplate, mf); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}
	return mf, nil
}

func writeTemplate(path string, tmpl *template.Template, data *MigrationFile) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if err := tmpl.Execute(f, data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ListMigrations returns the base name of every up migration in fsys, in
// version order. A missing directory has no migrations.
func ListMigrations(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), upSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), upSuffix))
	}
	sort.SliceStable(names, func(i, j int) bool {
		return versionOf(names[i]) < versionOf(names[j])
	})
	return names, nil
}

// versionOf parses the numeric prefix of a migration base name
func versionOf(base string) int {
	prefix, _, _ := strings.Cut(base, "_")
	v, err := strconv.Atoi(prefix)
	if err != nil {
		return 0
	}
	return v
}

// sanitizeName lowercases name and collapses separators into underscores,
// dropping anything else.
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, c := range strings.ToLower(name) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(c)
		case c == ' ' || c == '-' || c == '_':
			pendingSep = true
		}
	}
	return b.String()
}
