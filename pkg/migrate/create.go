package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const sqlTemplate = `-- +goose Up
-- +goose StatementBegin
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- +goose StatementEnd
`

// CreateSQLMigration writes a timestamped SQL migration skeleton into dir and
// returns its path.
func CreateSQLMigration(dir, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("name is required")
	}
	if dir == "" {
		dir = DefaultDir
	}

	version := time.Now().UTC().Format("20060102150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version, snakeCase(name)))

	if err := os.WriteFile(path, []byte(sqlTemplate), 0o644); err != nil {
		return "", fmt.Errorf("writing migration file: %w", err)
	}
	return path, nil
}

func snakeCase(name string) string {
	replaced := strings.NewReplacer(" ", "_", "-", "_").Replace(strings.TrimSpace(name))
	return strings.ToLower(replaced)
}
