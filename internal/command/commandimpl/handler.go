package commandimpl

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/panjf2000/ants/v2"
)

const helpMessage = `👋 Welcome to the Network feed bot!

Browse posts:
/feed [page] - All posts.
/following [page] - Posts from people you follow.
/profile <user id> [page] - Posts from one user.
/post <text> - Publish a new post.

Use the buttons under a feed to change page, like or unlike a post and edit your own posts.
On someone else's profile the Follow button follows or unfollows them.
After pressing Edit, send the new text as a normal message.
/cancel - Stop editing.

Type /help at any time to see this guide.`

const (
	tooManyRequestsMessage = "Too many requests, please slow down."
	unknownCommandMessage  = "Unknown command. Type /help to see the list of available commands."
)

func (c *CommandImpl) HandleCommand(ctx context.Context) error {
	pool, err := ants.NewPool(c.workers, ants.WithPanicHandler(c.recoverPanic))
	if err != nil {
		return fmt.Errorf("failed to create update pool: %w", err)
	}
	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		pool.Release()
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := c.Telegram.GetUpdatesChan(u)
	c.Logger.Info("Command handler started, listening for updates.", "workers", c.workers)

	for {
		select {
		case <-ctx.Done():
			c.Logger.Info("Command handler shutting down.")
			c.Telegram.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				c.Logger.Warn("Telegram updates channel closed unexpectedly. Restarting handler...")
				return errors.New("telegram updates channel closed")
			}

			wg.Add(1)
			err := pool.Submit(func() {
				defer wg.Done()
				c.handleUpdate(ctx, update)
			})
			if err != nil {
				wg.Done()
				c.Logger.Error("Failed to submit update to ants pool", "updateID", update.UpdateID, "error", err)
			}
		}
	}
}

// recoverPanic is the pool's panic handler. The worker that panicked is
// replaced and the other updates keep going.
func (c *CommandImpl) recoverPanic(r any) {
	c.Logger.Error("Panic recovered while processing an update", "panic", r, "stack", string(debug.Stack()))
}

func (c *CommandImpl) handleUpdate(ctx context.Context, u tgbotapi.Update) {
	// Handle callback queries (button clicks)
	if u.CallbackQuery != nil {
		if u.CallbackQuery.Message == nil {
			return
		}
		if !c.limiter.Allow(u.CallbackQuery.Message.Chat.ID) {
			_ = c.Telegram.AnswerCallback(u.CallbackQuery.ID, tooManyRequestsMessage)
			return
		}
		c.handleCallback(ctx, u.CallbackQuery)
		return
	}

	if u.Message == nil {
		return
	}

	chatID := u.Message.Chat.ID
	if !c.limiter.Allow(chatID) {
		c.Logger.Warn("Rate limit hit", "chatID", chatID)
		_, _ = c.Telegram.SendMessage(chatID, tooManyRequestsMessage)
		return
	}

	from := ""
	if u.Message.From != nil {
		from = u.Message.From.UserName
	}
	c.Logger.Info("Message received", "from", from, "chatID", chatID)

	if u.Message.IsCommand() {
		if err := c.processCommand(ctx, u.Message); err != nil {
			c.Logger.Error("Error processing command",
				"command", u.Message.Command(),
				"error", err)
		}
		return
	}

	if err := c.handleText(ctx, chatID, u.Message.Text); err != nil {
		c.Logger.Error("Error processing message", "chatID", chatID, "error", err)
	}
}

func (c *CommandImpl) processCommand(ctx context.Context, msg *tgbotapi.Message) error {
	command := msg.Command()
	args := msg.CommandArguments()
	chatID := msg.Chat.ID

	switch command {
	case "start", "help":
		_, err := c.Telegram.SendMessage(chatID, helpMessage)
		return err
	case "feed":
		return c.handleFeedCommand(ctx, chatID, args)
	case "following":
		return c.handleFollowingCommand(ctx, chatID, args)
	case "profile":
		return c.handleProfileCommand(ctx, chatID, args)
	case "post":
		return c.handlePostCommand(ctx, chatID, args)
	case "cancel":
		return c.handleCancel(chatID)
	default:
		_, err := c.Telegram.SendMessage(chatID, unknownCommandMessage)
		return err
	}
}
