package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

// Dir is handed to goose. The migrations are compiled in, so any existing
// directory will do.
const Dir = "."

// Up applies every migration registered in this package.
func Up(ctx context.Context, db *sql.DB) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, Dir)
}
