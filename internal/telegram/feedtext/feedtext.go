// Package feedtext turns a feed.View into a Telegram message: MarkdownV2
// text for the posts and an inline keyboard whose callback data encode the
// view's intents.
package feedtext

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/network-feed/internal/domain"
	"github.com/orgball2608/network-feed/internal/feed"
	"github.com/orgball2608/network-feed/internal/telegram"
	"github.com/orgball2608/network-feed/pkg/errors"
	"github.com/orgball2608/network-feed/pkg/formatter"
)

const (
	// Noop is the callback data of disabled pager controls.
	Noop = "noop"

	maxButtonsPerRow = 8
	maxContentRunes  = 350
	// maxMessageLength is Telegram's cap on message text in UTF-16 units.
	maxMessageLength = 4096
	// pagerWindow is how many numbered pages are kept on each side of the
	// current one. The first and last page are always kept.
	pagerWindow = 2
	gapLabel    = "…"
)

var (
	ErrNoop        = errors.New("no-op callback")
	ErrBadCallback = errors.NewWithCode(errors.CodeValidation, "malformed callback data")
)

var intentPrefixes = map[feed.IntentKind]string{
	feed.IntentPage:   "p",
	feed.IntentEdit:   "e",
	feed.IntentLike:   "l",
	feed.IntentCancel: "c",
	feed.IntentFollow: "f",
}

// EncodeIntent returns the callback data for intent. Intents that cannot be
// triggered from a button (update carries free text) encode as Noop.
func EncodeIntent(intent feed.Intent) string {
	prefix, ok := intentPrefixes[intent.Kind]
	if !ok {
		return Noop
	}
	switch intent.Kind {
	case feed.IntentPage:
		return prefix + ":" + strconv.Itoa(intent.Page)
	case feed.IntentFollow:
		return prefix + ":" + strconv.Itoa(intent.UserID)
	}
	return prefix + ":" + strconv.Itoa(intent.PostID)
}

// ParseCallback is the inverse of EncodeIntent.
func ParseCallback(data string) (feed.Intent, error) {
	if data == Noop {
		return feed.Intent{}, ErrNoop
	}

	prefix, arg, found := strings.Cut(data, ":")
	if !found {
		return feed.Intent{}, errors.Wrap(ErrBadCallback, data)
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return feed.Intent{}, errors.Wrap(ErrBadCallback, data)
	}

	switch prefix {
	case "p":
		return feed.Intent{Kind: feed.IntentPage, Page: n}, nil
	case "e":
		return feed.Intent{Kind: feed.IntentEdit, PostID: n}, nil
	case "l":
		return feed.Intent{Kind: feed.IntentLike, PostID: n}, nil
	case "c":
		return feed.Intent{Kind: feed.IntentCancel, PostID: n}, nil
	case "f":
		return feed.Intent{Kind: feed.IntentFollow, UserID: n}, nil
	}
	return feed.Intent{}, errors.Wrap(ErrBadCallback, data)
}

// Render builds the message for view.
func Render(view feed.View) telegram.FeedMessage {
	return telegram.FeedMessage{
		Text:     renderText(view),
		Keyboard: renderKeyboard(view),
	}
}

// renderText shortens post content until the message fits. The length of
// the escaped text bounds the length Telegram measures after parsing.
func renderText(view feed.View) string {
	limit := maxContentRunes
	for {
		text := renderTextLimited(view, limit)
		if utf16Len(text) <= maxMessageLength || limit == 0 {
			return text
		}
		limit = limit * 2 / 3
	}
}

func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

func renderTextLimited(view feed.View, contentLimit int) string {
	var sb strings.Builder

	if view.Err != "" {
		sb.WriteString("⚠️ ")
		sb.WriteString(formatter.EscapeMarkdownV2("Error: " + view.Err))
		sb.WriteString("\n\n")
	}
	if view.Empty {
		sb.WriteString("_")
		sb.WriteString(formatter.EscapeMarkdownV2(view.Notice))
		sb.WriteString("_")
	}

	for i, item := range view.Items {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		writeItem(&sb, item, contentLimit)
	}

	if view.Pager.Total > 1 {
		sb.WriteString("\n\n_")
		sb.WriteString(formatter.EscapeMarkdownV2(fmt.Sprintf("Page %d of %d", view.Pager.Current, view.Pager.Total)))
		sb.WriteString("_")
	}

	if sb.Len() == 0 {
		// Telegram rejects empty messages.
		return formatter.EscapeMarkdownV2(feed.NoPostsNotice)
	}
	return sb.String()
}

func writeItem(sb *strings.Builder, item feed.ItemView, contentLimit int) {
	post := item.Post
	fmt.Fprintf(sb, "*%s* %s\n",
		formatter.EscapeMarkdownV2(post.Creator),
		formatter.EscapeMarkdownV2(fmt.Sprintf("#%d", post.ID)))
	fmt.Fprintf(sb, "_%s_ · %s\n",
		formatter.EscapeMarkdownV2(post.CreateDate),
		formatter.EscapeMarkdownV2(formatter.Plural(post.TotalLikes, "like", "likes")))
	sb.WriteString(formatter.EscapeMarkdownV2(formatter.Truncate(post.Content, contentLimit)))

	if item.Editing() {
		sb.WriteString("\n✏️ _")
		sb.WriteString(formatter.EscapeMarkdownV2("Send the new text as a message, or /cancel"))
		sb.WriteString("_")
	}
	if item.EditError != "" {
		sb.WriteString("\n❗ ")
		sb.WriteString(formatter.EscapeMarkdownV2(item.EditError))
	}
	for _, alert := range item.Alerts {
		sb.WriteString("\n❗ ")
		sb.WriteString(formatter.EscapeMarkdownV2(alert))
	}
}

func renderKeyboard(view feed.View) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	if f := view.Follow; f != nil && f.Intent != nil {
		label := fmt.Sprintf("%s user %d", f.Label, f.Intent.UserID)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, EncodeIntent(*f.Intent))))
	}

	for _, item := range view.Items {
		var row []tgbotapi.InlineKeyboardButton
		if item.Editing() {
			cancel := feed.Intent{Kind: feed.IntentCancel, PostID: item.Post.ID}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(buttonLabel("Cancel", item.Post.ID), EncodeIntent(cancel)))
		} else {
			for _, c := range item.Controls {
				if c.Intent == nil {
					continue
				}
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(buttonLabel(c.Label, c.PostID), EncodeIntent(*c.Intent)))
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}

	pager := pagerButtons(view.Pager)
	for len(pager) > 0 {
		n := min(len(pager), maxButtonsPerRow)
		rows = append(rows, pager[:n])
		pager = pager[n:]
	}

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// pagerButtons keeps previous, next, the first and last page and the pages
// around the current one. Skipped runs become a single no-op button.
func pagerButtons(pager feed.PagerView) []tgbotapi.InlineKeyboardButton {
	var buttons []tgbotapi.InlineKeyboardButton
	skipped := false
	for _, c := range pager.Controls {
		numbered := c.Label != feed.LabelPrevious && c.Label != feed.LabelNext
		if numbered && !inWindow(c.Page, pager.Current, pager.Total) {
			skipped = true
			continue
		}
		if skipped {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(gapLabel, Noop))
			skipped = false
		}

		data := Noop
		if !c.Disabled && c.Intent != nil {
			data = EncodeIntent(*c.Intent)
		}
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(pageLabel(c), data))
	}
	return buttons
}

func inWindow(page, current, total int) bool {
	if page == 1 || page == total {
		return true
	}
	return page >= current-pagerWindow && page <= current+pagerWindow
}

func buttonLabel(label string, postID int) string {
	return fmt.Sprintf("%s #%d", label, postID)
}

func pageLabel(c feed.PageControl) string {
	switch {
	case c.Label == feed.LabelPrevious:
		return "« " + c.Label
	case c.Label == feed.LabelNext:
		return c.Label + " »"
	case c.Active:
		return "· " + c.Label + " ·"
	}
	return c.Label
}

// Announcement is the channel message for a newly published post.
func Announcement(post domain.Post) string {
	return fmt.Sprintf("🆕 *%s* %s\n_%s_\n\n%s",
		formatter.EscapeMarkdownV2(post.Creator),
		formatter.EscapeMarkdownV2(fmt.Sprintf("#%d", post.ID)),
		formatter.EscapeMarkdownV2(post.CreateDate),
		formatter.EscapeMarkdownV2(formatter.Truncate(post.Content, maxContentRunes)))
}
