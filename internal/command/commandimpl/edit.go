package commandimpl

import (
	"context"
	"errors"

	"github.com/orgball2608/network-feed/internal/feed"
	apperrors "github.com/orgball2608/network-feed/pkg/errors"
)

const (
	idleMessage        = "Send /feed to browse posts or /help to see what I can do."
	nothingToCancel    = "Nothing to cancel."
	editCancelledReply = "Editing cancelled."
	postUpdatedReply   = "✅ Post updated."
	reloadFailedReply  = "The feed could not be reloaded: "
)

// handleText treats a plain message as the new content of the post the chat
// is editing.
func (c *CommandImpl) handleText(ctx context.Context, chatID int64, text string) error {
	s := c.session(chatID)
	if s == nil || s.editingPost() == 0 {
		_, err := c.Telegram.SendMessage(chatID, idleMessage)
		return err
	}
	postID := s.editingPost()

	view, err := s.renderer.UpdatePost(ctx, postID, text)
	switch {
	case errors.Is(err, feed.ErrStale):
		// Saved; a newer load is redrawing the message.
		s.setEditing(0)
		_, sendErr := c.Telegram.SendMessage(chatID, postUpdatedReply)
		return sendErr
	case apperrors.HasCode(err, apperrors.CodeReload):
		c.Logger.Warn("Feed reload after update failed", "chatID", chatID, "postID", postID, "error", err)
		s.setEditing(0)
		if _, sendErr := c.Telegram.SendMessage(chatID, postUpdatedReply+" "+reloadFailedReply+userMessage(err)); sendErr != nil {
			return sendErr
		}
	case err != nil:
		c.Logger.Warn("Post update failed", "chatID", chatID, "postID", postID, "error", err)
		if _, sendErr := c.Telegram.SendMessage(chatID, "❌ "+userMessage(err)); sendErr != nil {
			return sendErr
		}
	default:
		if _, sendErr := c.Telegram.SendMessage(chatID, postUpdatedReply); sendErr != nil {
			return sendErr
		}
	}

	return c.showFeed(chatID, s, view)
}

func (c *CommandImpl) handleCancel(chatID int64) error {
	s := c.session(chatID)
	if s == nil || s.editingPost() == 0 {
		_, err := c.Telegram.SendMessage(chatID, nothingToCancel)
		return err
	}

	view, err := s.renderer.CancelEdit(s.editingPost())
	s.setEditing(0)
	if err != nil {
		c.Logger.Warn("Cancel edit failed", "chatID", chatID, "error", err)
	}

	if _, err := c.Telegram.SendMessage(chatID, editCancelledReply); err != nil {
		return err
	}
	return c.showFeed(chatID, s, view)
}
