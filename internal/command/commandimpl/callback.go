package commandimpl

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/network-feed/internal/feed"
	"github.com/orgball2608/network-feed/internal/telegram/feedtext"
	apperrors "github.com/orgball2608/network-feed/pkg/errors"
)

const (
	expiredFeedMessage   = "This feed has expired. Send /feed to load a fresh one."
	unknownActionMessage = "Unknown action."
	followToggledMessage = "Follow toggled."
)

func (c *CommandImpl) handleCallback(ctx context.Context, callbackQuery *tgbotapi.CallbackQuery) {
	chatID := callbackQuery.Message.Chat.ID

	intent, err := feedtext.ParseCallback(callbackQuery.Data)
	if errors.Is(err, feedtext.ErrNoop) {
		c.answer(callbackQuery.ID, "")
		return
	}
	if err != nil {
		c.Logger.Warn("Failed to parse callback data", "data", callbackQuery.Data, "error", err)
		c.answer(callbackQuery.ID, unknownActionMessage)
		return
	}

	s := c.session(chatID)
	if s == nil || s.messageID != callbackQuery.Message.MessageID {
		c.answer(callbackQuery.ID, expiredFeedMessage)
		return
	}

	view, err := s.renderer.Dispatch(ctx, intent)
	if errors.Is(err, feed.ErrStale) {
		// A newer load owns the message.
		c.answer(callbackQuery.ID, "")
		return
	}
	if err != nil {
		c.Logger.Warn("Feed action failed",
			"chatID", chatID,
			"intent", intent.Kind,
			"postID", intent.PostID,
			"error", err)
		c.answer(callbackQuery.ID, userMessage(err))
		if apperrors.HasCode(err, apperrors.CodeValidation) {
			// Nothing changed on screen.
			return
		}
	} else {
		switch intent.Kind {
		case feed.IntentEdit:
			s.setEditing(intent.PostID)
			c.answer(callbackQuery.ID, fmt.Sprintf("Send the new text for post #%d as a message.", intent.PostID))
		case feed.IntentCancel:
			s.setEditing(0)
			c.answer(callbackQuery.ID, "Editing cancelled.")
		case feed.IntentFollow:
			c.answer(callbackQuery.ID, followToggledMessage)
		default:
			c.answer(callbackQuery.ID, "")
		}
	}

	if err := c.showFeed(chatID, s, view); err != nil {
		c.Logger.Warn("Failed to redraw feed", "chatID", chatID, "error", err)
	}
}

func (c *CommandImpl) answer(callbackID, text string) {
	if err := c.Telegram.AnswerCallback(callbackID, text); err != nil {
		c.Logger.Warn("Failed to answer callback", "error", err)
	}
}
