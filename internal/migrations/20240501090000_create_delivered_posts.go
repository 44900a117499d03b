package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateDeliveredPosts, downCreateDeliveredPosts)
}

func upCreateDeliveredPosts(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS delivered_posts (
		id SERIAL PRIMARY KEY,
		post_id INTEGER NOT NULL UNIQUE,
		creator VARCHAR NOT NULL DEFAULT '',
		delivered_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS delivered_posts_delivered_at_idx ON delivered_posts (delivered_at);
	`)
	return err
}

func downCreateDeliveredPosts(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	DROP TABLE IF EXISTS delivered_posts;
	`)
	return err
}
