package delivery

import (
	"context"
	"errors"
	"time"

	"github.com/orgball2608/network-feed/internal/domain"
)

var ErrAlreadyExists = errors.New("post already delivered")

//go:generate go run go.uber.org/mock/mockgen -source=delivery.go -destination=mocks/mock.go
type Repository interface {
	// Create records that a post was announced
	Create(ctx context.Context, post domain.DeliveredPost) error

	// Exists checks if a post was already announced
	Exists(ctx context.Context, postID int) (bool, error)

	// LatestPostID returns the highest announced post id, 0 for an empty ledger
	LatestPostID(ctx context.Context) (int, error)

	// CleanupOldRecords deletes records delivered before now - olderThan.
	// The row of the highest post id is always kept.
	CleanupOldRecords(ctx context.Context, olderThan time.Duration) (int64, error)
}
