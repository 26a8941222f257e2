package migration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/pkg/postgresql"
)

const (
	defaultSchema    = "public"
	defaultTableName = "schema_migrations"

	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

// Migration is one versioned schema change loaded from disk.
type Migration struct {
	ID        string
	Name      string
	Timestamp time.Time
	UpSQL     string
	DownSQL   string
}

// Config for the migration runner.
type Config struct {
	Dir       string `env:"DIR" envDefault:"migrations"`
	Schema    string `env:"SCHEMA" envDefault:"public"`
	TableName string `env:"TABLE" envDefault:"schema_migrations"`
}

// Runner applies and reverts migrations against PostgreSQL, recording every
// applied id in a tracking table.
type Runner struct {
	client postgresql.PostgreSQLClient
	logger logger.Interface
	config Config
}

// NewRunner creates a new migration runner.
func NewRunner(client postgresql.PostgreSQLClient, logger logger.Interface, config Config) *Runner {
	if config.Schema == "" {
		config.Schema = defaultSchema
	}
	if config.TableName == "" {
		config.TableName = defaultTableName
	}

	return &Runner{
		client: client,
		logger: logger,
		config: config,
	}
}

func (r *Runner) table() string {
	return r.config.Schema + "." + r.config.TableName
}

// EnsureTable creates the tracking table if it doesn't exist.
func (r *Runner) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`, r.table())

	if _, err := r.client.Exec(ctx, query); err != nil {
		return errors.NewTracerWithCode(errors.MigrationError, "create migration table").Wrap(err)
	}
	return nil
}

// Applied returns the ids of every applied migration.
func (r *Runner) Applied(ctx context.Context) (map[string]bool, error) {
	rows, err := r.client.Query(ctx, "SELECT id FROM "+r.table()+" ORDER BY applied_at")
	if err != nil {
		return nil, errors.NewTracerWithCode(errors.MigrationError, "list applied migrations").Wrap(err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.NewTracerWithCode(errors.MigrationError, "scan applied migration").Wrap(err)
		}
		applied[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewTracerWithCode(errors.MigrationError, "list applied migrations").Wrap(err)
	}

	return applied, nil
}

// Load reads every *.up.sql file of the migration directory, and its
// *.down.sql counterpart when present, ordered by id.
func Load(dir string) ([]Migration, error) {
	upFiles, err := filepath.Glob(filepath.Join(dir, "*"+upSuffix))
	if err != nil {
		return nil, errors.NewTracerWithCode(errors.MigrationError, "list migration files").Wrap(err)
	}
	sort.Strings(upFiles)

	migrations := make([]Migration, 0, len(upFiles))
	for _, upFile := range upFiles {
		m, err := parseFiles(upFile)
		if err != nil {
			return nil, errors.NewTracerWithCode(errors.MigrationError, "parse migration "+filepath.Base(upFile)).Wrap(err)
		}
		migrations = append(migrations, m)
	}

	return migrations, nil
}

// parseFiles expects YYYYMMDDHHMMSS_name.up.sql. Ids without a timestamp
// prefix get the zero Unix time.
func parseFiles(upFile string) (Migration, error) {
	upContent, err := os.ReadFile(upFile)
	if err != nil {
		return Migration{}, err
	}

	id := strings.TrimSuffix(filepath.Base(upFile), upSuffix)
	name := id
	stamp, rest, found := strings.Cut(id, "_")
	if found {
		name = rest
	}

	timestamp, err := time.Parse("20060102150405", stamp)
	if err != nil {
		timestamp = time.Unix(0, 0).UTC()
	}

	var downSQL string
	downFile := strings.TrimSuffix(upFile, upSuffix) + downSuffix
	if downContent, err := os.ReadFile(downFile); err == nil {
		downSQL = strings.TrimSpace(string(downContent))
	}

	return Migration{
		ID:        id,
		Name:      name,
		Timestamp: timestamp,
		UpSQL:     strings.TrimSpace(string(upContent)),
		DownSQL:   downSQL,
	}, nil
}

// Pending returns the migrations not yet applied, oldest first, limited to
// steps when steps is positive.
func Pending(migrations []Migration, applied map[string]bool, steps int) []Migration {
	var pending []Migration
	for _, m := range migrations {
		if !applied[m.ID] {
			pending = append(pending, m)
		}
	}
	if steps > 0 && len(pending) > steps {
		pending = pending[:steps]
	}
	return pending
}

// Revertible returns up to steps applied migrations, newest first.
func Revertible(migrations []Migration, applied map[string]bool, steps int) []Migration {
	var revert []Migration
	for i := len(migrations) - 1; i >= 0 && len(revert) < steps; i-- {
		if applied[migrations[i].ID] {
			revert = append(revert, migrations[i])
		}
	}
	return revert
}

// Up applies pending migrations and returns how many were applied. Zero
// steps applies all of them.
func (r *Runner) Up(ctx context.Context, steps int) (int, error) {
	migrations, applied, err := r.state(ctx)
	if err != nil {
		return 0, err
	}

	var n int
	for _, m := range Pending(migrations, applied, steps) {
		if m.UpSQL == "" {
			r.logger.WarnContext(ctx, "Migration has no up statements, skipping", logger.Field{
				Key:   "migration",
				Value: m.ID,
			})
			continue
		}

		err := r.inTx(ctx, m.UpSQL,
			"INSERT INTO "+r.table()+" (id, name, applied_at) VALUES ($1, $2, NOW())", m.ID, m.Name)
		if err != nil {
			return n, errors.NewTracerWithCode(errors.MigrationError, "apply migration "+m.ID).Wrap(err)
		}

		n++
		r.logger.InfoContext(ctx, "Applied migration", logger.Field{
			Key:   "migration",
			Value: m.ID,
		})
	}

	return n, nil
}

// Down reverts the latest steps applied migrations and returns how many were
// reverted. A migration without down statements stops the run.
func (r *Runner) Down(ctx context.Context, steps int) (int, error) {
	if steps <= 0 {
		return 0, errors.NewTracerWithCode(errors.MigrationError, "steps must be greater than 0 for down migrations")
	}

	migrations, applied, err := r.state(ctx)
	if err != nil {
		return 0, err
	}

	var n int
	for _, m := range Revertible(migrations, applied, steps) {
		if m.DownSQL == "" {
			return n, errors.NewTracerWithCode(errors.MigrationError, "no down statements for migration "+m.ID)
		}

		if err := r.inTx(ctx, m.DownSQL, "DELETE FROM "+r.table()+" WHERE id = $1", m.ID); err != nil {
			return n, errors.NewTracerWithCode(errors.MigrationError, "revert migration "+m.ID).Wrap(err)
		}

		n++
		r.logger.InfoContext(ctx, "Reverted migration", logger.Field{
			Key:   "migration",
			Value: m.ID,
		})
	}

	return n, nil
}

func (r *Runner) state(ctx context.Context) ([]Migration, map[string]bool, error) {
	migrations, err := Load(r.config.Dir)
	if err != nil {
		return nil, nil, err
	}

	applied, err := r.Applied(ctx)
	if err != nil {
		return nil, nil, err
	}

	return migrations, applied, nil
}

// inTx runs the migration statements and the tracking statement atomically.
func (r *Runner) inTx(ctx context.Context, statements, record string, args ...any) error {
	tx, err := r.client.Pool().Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		// no-op once committed
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, statements); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, record, args...); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
