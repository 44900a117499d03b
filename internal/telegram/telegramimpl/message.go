package telegramimpl

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/network-feed/internal/telegram"
)

// SendMessage sends a plain text message to a specific chat ID
func (tg *TelegramImpl) SendMessage(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	sentMsg, err := tg.TgBot.Send(msg)
	if err != nil {
		tg.Logger.Error("Error sending message",
			"chatID", chatID,
			"error", err)
		return 0, fmt.Errorf("failed to send message: %w", err)
	}

	tg.Logger.Info("Message sent",
		"chatID", chatID,
		"messageID", sentMsg.MessageID)
	return sentMsg.MessageID, nil
}

// SendFeed sends a rendered feed page and returns its message id so later
// renders can edit it in place.
func (tg *TelegramImpl) SendFeed(chatID int64, feed telegram.FeedMessage) (int, error) {
	msg := tgbotapi.NewMessage(chatID, feed.Text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true
	if len(feed.Keyboard.InlineKeyboard) > 0 {
		msg.ReplyMarkup = feed.Keyboard
	}

	sentMsg, err := tg.TgBot.Send(msg)
	if err != nil {
		tg.Logger.Error("Error sending feed",
			"chatID", chatID,
			"error", err)
		return 0, fmt.Errorf("failed to send feed: %w", err)
	}

	tg.Logger.Debug("Feed sent", "chatID", chatID, "messageID", sentMsg.MessageID)
	return sentMsg.MessageID, nil
}

// EditFeed replaces the text and keyboard of a feed message.
func (tg *TelegramImpl) EditFeed(chatID int64, messageID int, feed telegram.FeedMessage) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, feed.Text, feed.Keyboard)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	edit.DisableWebPagePreview = true
	if len(feed.Keyboard.InlineKeyboard) == 0 {
		edit.ReplyMarkup = nil
	}

	// Request instead of Send: an edit may answer with a bare boolean.
	if _, err := tg.TgBot.Request(edit); err != nil {
		tg.Logger.Error("Error editing feed",
			"chatID", chatID,
			"messageID", messageID,
			"error", err)
		return fmt.Errorf("failed to edit feed: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges a button press, optionally with a toast.
func (tg *TelegramImpl) AnswerCallback(callbackID, text string) error {
	if _, err := tg.TgBot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		tg.Logger.Warn("Error answering callback", "callbackID", callbackID, "error", err)
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

// SendMessageToDefaultChannel sends a MarkdownV2 message to the configured channel
func (tg *TelegramImpl) SendMessageToDefaultChannel(text string) error {
	channelName := "@" + tg.Config.Telegram.Channel
	msg := tgbotapi.NewMessageToChannel(channelName, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	if _, err := tg.TgBot.Send(msg); err != nil {
		tg.Logger.Error("Error sending message to channel",
			"channel", channelName,
			"error", err)
		return fmt.Errorf("failed to send message to channel: %w", err)
	}

	tg.Logger.Info("Message sent to channel",
		"channel", channelName)
	return nil
}

// GetUpdatesChan wraps the bot's GetUpdatesChan method
func (tg *TelegramImpl) GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return tg.TgBot.GetUpdatesChan(u)
}

func (tg *TelegramImpl) StopReceivingUpdates() {
	tg.TgBot.StopReceivingUpdates()
}
