// Package migrate applies embedded SQL migrations on startup.
package migrate

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/and161185/smartfit/migrations"
)

// Up runs all pending migrations from the embedded filesystem and logs the
// resulting schema version.
func Up(ctx context.Context, dsn string, log *zap.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return err
	}

	ver, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return err
	}
	log.Info("schema migrated", zap.Int64("version", ver))
	return nil
}
