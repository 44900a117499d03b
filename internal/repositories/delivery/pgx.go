package delivery

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/network-feed/internal/domain"
	"github.com/orgball2608/network-feed/internal/repositories"
	"github.com/orgball2608/network-feed/pkg/logger"
)

const table = "delivered_posts"

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
	now    func() time.Time
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("DeliveryRepo"),
		now:    time.Now,
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Create(ctx context.Context, post domain.DeliveredPost) error {
	deliveredAt := post.DeliveredAt
	if deliveredAt.IsZero() {
		deliveredAt = p.now()
	}

	query, args, err := insertQuery(post, deliveredAt)
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == repositories.UniqueViolation {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (p *Pgx) Exists(ctx context.Context, postID int) (bool, error) {
	query, args, err := existsQuery(postID)
	if err != nil {
		return false, repositories.ErrBadQuery
	}

	var one int
	err = p.pg.QueryRow(ctx, query, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (p *Pgx) LatestPostID(ctx context.Context) (int, error) {
	query, args, err := latestQuery()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	var postID int
	if err := p.pg.QueryRow(ctx, query, args...).Scan(&postID); err != nil {
		return 0, err
	}
	return postID, nil
}

func (p *Pgx) CleanupOldRecords(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := p.now().Add(-olderThan)

	query, args, err := cleanupQuery(cutoff)
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	result, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	deleted := result.RowsAffected()
	p.logger.Info("Delivery ledger cleaned up", "cutoff", cutoff, "deleted", deleted)
	return deleted, nil
}

func insertQuery(post domain.DeliveredPost, deliveredAt time.Time) (string, []any, error) {
	return repositories.SqBuilder.
		Insert(table).
		Columns("post_id", "creator", "delivered_at").
		Values(post.PostID, post.Creator, deliveredAt).
		ToSql()
}

func existsQuery(postID int) (string, []any, error) {
	return repositories.SqBuilder.
		Select("1").
		From(table).
		Where(sq.Eq{"post_id": postID}).
		Limit(1).
		ToSql()
}

func latestQuery() (string, []any, error) {
	return repositories.SqBuilder.
		Select("COALESCE(MAX(post_id), 0)").
		From(table).
		ToSql()
}

// cleanupQuery never deletes the newest row: it is the watcher's high-water
// mark and posts below it stay on page 1 for as long as nobody posts.
func cleanupQuery(cutoff time.Time) (string, []any, error) {
	return repositories.SqBuilder.
		Delete(table).
		Where(sq.Lt{"delivered_at": cutoff}).
		Where("post_id < (SELECT MAX(post_id) FROM " + table + ")").
		ToSql()
}
