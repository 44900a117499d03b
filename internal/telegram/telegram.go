package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

//go:generate go run go.uber.org/mock/mockgen -source=telegram.go -destination=mocks/mock.go

// FeedMessage is a rendered feed page: MarkdownV2 text plus the inline
// keyboard that carries the page's controls.
type FeedMessage struct {
	Text     string
	Keyboard tgbotapi.InlineKeyboardMarkup
}

type Client interface {
	GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()

	SendMessage(chatID int64, text string) (int, error)
	SendFeed(chatID int64, msg FeedMessage) (int, error)
	EditFeed(chatID int64, messageID int, msg FeedMessage) error
	AnswerCallback(callbackID, text string) error

	SendMessageToDefaultChannel(text string) error
}
