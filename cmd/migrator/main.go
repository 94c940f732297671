package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/pflag"
)

const (
	backendFlag       = "backend"
	storagePathFlag   = "storage-path"
	migrationPathFlag = "migrations-path"
)

// Database URL schemes of the golang-migrate drivers by storage backend.
var schemes = map[string]string{
	"postgres": "pgx5",
	"mysql":    "mysql",
}

func main() {
	backend, storagePath, migrationsPath := getFlagsValues()
	validateFlags(backend, storagePath, migrationsPath)
	if backend == "mysql" {
		storagePath = withMultiStatements(storagePath)
	}
	makeMigrations(schemes[backend], storagePath, migrationsPath)
}

// withMultiStatements enables several statements per migration file.
func withMultiStatements(dsn string) string {
	if strings.Contains(dsn, "multiStatements=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&multiStatements=true"
	}
	return dsn + "?multiStatements=true"
}

type MigrationLogger struct {
	logger  *slog.Logger
	verbose bool
}

func NewMigrationLogger() *MigrationLogger {
	return &MigrationLogger{
		logger:  slog.Default(),
		verbose: true,
	}
}

func (ml *MigrationLogger) Printf(format string, v ...any) {
	ml.logger.Info(fmt.Sprintf(format, v...))
}

func (ml *MigrationLogger) Verbose() bool {
	return ml.verbose
}

func getFlagsValues() (backend, storage, migrations string) {
	backendName := pflag.StringP(backendFlag, "b", "postgres", "postgres or mysql")
	storagePath := pflag.StringP(storagePathFlag, "s", "", "database address without scheme")
	migrationsPath := pflag.StringP(migrationPathFlag, "m", "", "")
	pflag.Parse()
	return *backendName, *storagePath, *migrationsPath
}

func validateFlags(backend, storagePath, migrationsPath string) {
	var errs []error

	if _, ok := schemes[backend]; !ok {
		errs = append(errs, fmt.Errorf("--%s flag: unknown backend %q", backendFlag, backend))
	}

	if storagePath == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", storagePathFlag))
	}

	if migrationsPath == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", migrationPathFlag))
	}

	if len(errs) != 0 {
		slog.Error("invalid args", "err", errors.Join(errs...))
		fallDown()
	}
}

func makeMigrations(scheme, storagePath, migrationsPath string) {

	m, err := migrate.New(
		fmt.Sprintf("file://%s", migrationsPath),
		fmt.Sprintf("%s://%s", scheme, storagePath),
	)
	if err != nil {
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}

	m.Log = NewMigrationLogger()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.Log.Printf("no migrations to apply")
			return
		}
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}
	m.Log.Printf("migration applied\n")
}

func fallDown() {
	os.Exit(2)
}
