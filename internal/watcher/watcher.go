package watcher

import "context"

// Client polls the feed and announces posts the channel has not seen yet.
type Client interface {
	// Start schedules the polling and cleanup jobs. They stop when ctx is
	// done or Stop is called.
	Start(ctx context.Context) error
	Stop() error

	// CheckNewPosts loads the first page of all posts and announces the ones
	// missing from the delivery ledger, oldest first.
	CheckNewPosts(ctx context.Context) (int, error)

	// CleanupLedger forgets deliveries older than the configured retention.
	CleanupLedger(ctx context.Context) (int64, error)
}
