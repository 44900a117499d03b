package command

import "context"

// Client serves the bot's chat commands and feed buttons until ctx is done.
type Client interface {
	HandleCommand(ctx context.Context) error
}
