package watcherimpl

import (
	"context"
	"errors"
	"fmt"

	"github.com/orgball2608/network-feed/internal/domain"
	"github.com/orgball2608/network-feed/internal/network"
	"github.com/orgball2608/network-feed/internal/repositories/delivery"
	"github.com/orgball2608/network-feed/internal/telegram/feedtext"
	"github.com/orgball2608/network-feed/pkg/retry"
)

func (w *WatcherImpl) CheckNewPosts(ctx context.Context) (int, error) {
	page, err := w.loadLatest(ctx)
	if err != nil {
		return 0, err
	}

	// Posts at or below the newest announced id were either announced or
	// predate the watcher. Their ledger rows may already be cleaned up.
	latest, err := w.DeliveryRepo.LatestPostID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read delivery ledger: %w", err)
	}

	// The server lists newest first.
	announced := 0
	for i := len(page.PageObjects) - 1; i >= 0; i-- {
		post := page.PageObjects[i]
		if post.ID <= latest {
			continue
		}

		exists, err := w.DeliveryRepo.Exists(ctx, post.ID)
		if err != nil {
			return announced, fmt.Errorf("failed to check delivery of post %d: %w", post.ID, err)
		}
		if exists {
			continue
		}

		if err := w.Telegram.SendMessageToDefaultChannel(feedtext.Announcement(post)); err != nil {
			// Not recorded, so the next run tries again.
			return announced, fmt.Errorf("failed to announce post %d: %w", post.ID, err)
		}

		err = w.DeliveryRepo.Create(ctx, domain.DeliveredPost{PostID: post.ID, Creator: post.Creator})
		if err != nil && !errors.Is(err, delivery.ErrAlreadyExists) {
			return announced, fmt.Errorf("failed to record delivery of post %d: %w", post.ID, err)
		}

		announced++
		w.Logger.Info("Post announced", "post_id", post.ID, "creator", post.Creator)
	}

	return announced, nil
}

// loadLatest fetches page 1 of all posts, retrying server and transport
// failures. Client errors are not retried.
func (w *WatcherImpl) loadLatest(ctx context.Context) (*domain.Page, error) {
	var page *domain.Page
	err := retry.Do(ctx, w.Logger, "load latest posts", func() error {
		p, err := w.Network.GetPosts(ctx, 1, domain.FilterAll, w.Config.Network.UserID)
		if err != nil {
			var statusErr *network.StatusError
			if errors.As(err, &statusErr) && statusErr.Code < 500 {
				return retry.Permanent(err)
			}
			return err
		}
		page = p
		return nil
	}, w.retryCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest posts: %w", err)
	}
	return page, nil
}
