package commandimpl

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/orgball2608/network-feed/internal/domain"
	"github.com/orgball2608/network-feed/internal/feed"
	"github.com/orgball2608/network-feed/internal/network"
	"github.com/orgball2608/network-feed/internal/telegram/feedtext"
)

const (
	pageUsage    = "Page must be a positive number, e.g. /feed 2"
	profileUsage = "Please give a user id. Example: /profile <user id> [page]"
	postUsage    = "Please give the text of the post. Example: /post Hello everyone"

	postPublishedReply = "✅ Post published."
)

func (c *CommandImpl) handleFeedCommand(ctx context.Context, chatID int64, args string) error {
	page, err := parsePage(args)
	if err != nil {
		_, sendErr := c.Telegram.SendMessage(chatID, pageUsage)
		return sendErr
	}
	return c.openFeed(ctx, chatID, c.viewer(domain.FilterAll, 0), page)
}

func (c *CommandImpl) handleFollowingCommand(ctx context.Context, chatID int64, args string) error {
	page, err := parsePage(args)
	if err != nil {
		_, sendErr := c.Telegram.SendMessage(chatID, pageUsage)
		return sendErr
	}
	return c.openFeed(ctx, chatID, c.viewer(domain.FilterFollowing, 0), page)
}

func (c *CommandImpl) handleProfileCommand(ctx context.Context, chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 || len(fields) > 2 {
		_, err := c.Telegram.SendMessage(chatID, profileUsage)
		return err
	}

	profileID, err := strconv.Atoi(fields[0])
	if err != nil || profileID < 1 {
		_, sendErr := c.Telegram.SendMessage(chatID, profileUsage)
		return sendErr
	}

	page := 1
	if len(fields) == 2 {
		if page, err = parsePage(fields[1]); err != nil {
			_, sendErr := c.Telegram.SendMessage(chatID, pageUsage)
			return sendErr
		}
	}
	return c.openFeed(ctx, chatID, c.viewer(domain.FilterProfile, profileID), page)
}

// handlePostCommand publishes args as a new post and opens the first page
// of all posts, where it shows up first.
func (c *CommandImpl) handlePostCommand(ctx context.Context, chatID int64, args string) error {
	content := strings.TrimSpace(args)
	if content == "" {
		_, err := c.Telegram.SendMessage(chatID, postUsage)
		return err
	}

	if err := c.Network.NewPost(ctx, content); err != nil {
		c.Logger.Warn("New post failed", "chatID", chatID, "error", err)
		_, sendErr := c.Telegram.SendMessage(chatID, "❌ "+userMessage(err))
		return sendErr
	}

	c.Logger.Info("Post published", "chatID", chatID)
	if _, err := c.Telegram.SendMessage(chatID, postPublishedReply); err != nil {
		return err
	}
	return c.openFeed(ctx, chatID, c.viewer(domain.FilterAll, 0), 1)
}

// openFeed starts a new session for chatID. Buttons of the previous feed
// message stop working.
func (c *CommandImpl) openFeed(ctx context.Context, chatID int64, viewer domain.Viewer, page int) error {
	renderer := feed.New(c.Network, viewer, c.Logger)

	view, err := renderer.LoadAllPosts(ctx, page)
	if err != nil {
		// The view carries the error text; send it anyway.
		c.Logger.Warn("Initial feed load failed", "chatID", chatID, "filter", viewer.Filter, "error", err)
	}

	messageID, err := c.Telegram.SendFeed(chatID, feedtext.Render(view))
	if err != nil {
		return err
	}

	c.setSession(chatID, &session{renderer: renderer, messageID: messageID})
	c.Logger.Info("Feed opened",
		"chatID", chatID,
		"filter", viewer.Filter,
		"page", renderer.CurrentPage(),
		"messageID", messageID)
	return nil
}

// showFeed redraws the session's feed message with view.
func (c *CommandImpl) showFeed(chatID int64, s *session, view feed.View) error {
	s.sync(view)
	return c.Telegram.EditFeed(chatID, s.messageID, feedtext.Render(view))
}

func (c *CommandImpl) viewer(filter domain.Filter, profileID int) domain.Viewer {
	return domain.Viewer{
		LoggedIn:  c.Config.Network.LoggedIn,
		UserID:    c.Config.Network.UserID,
		Filter:    filter,
		ProfileID: profileID,
	}
}

func parsePage(args string) (int, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(args)
	if err != nil {
		return 0, err
	}
	if page < 1 {
		return 0, fmt.Errorf("page %d out of range", page)
	}
	return page, nil
}

// userMessage is the text shown to the chat for err.
func userMessage(err error) string {
	var statusErr *network.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Detail != "" {
			return statusErr.Error() + ": " + statusErr.Detail
		}
		return statusErr.Error()
	}
	for _, known := range []error{feed.ErrEmptyContent, feed.ErrNotEditable, feed.ErrUnknownPost, feed.ErrNotFollowable} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return err.Error()
}
