package network

import (
	"context"
	"fmt"

	"github.com/orgball2608/network-feed/internal/domain"
	"github.com/orgball2608/network-feed/pkg/errors"
)

//go:generate go run go.uber.org/mock/mockgen -source=network.go -destination=mocks/mock.go

// Client talks to the posts API of the network site.
type Client interface {
	// GetPosts fetches one page of posts for filter. id is the profile id for
	// the profile filter and the current user id otherwise.
	GetPosts(ctx context.Context, page int, filter domain.Filter, id int) (*domain.Page, error)

	// UpdatePost replaces the content of a post written by the current user.
	UpdatePost(ctx context.Context, postID int, content string) error

	// ToggleLike likes or unlikes a post for the current user and returns the
	// server's message.
	ToggleLike(ctx context.Context, postID int) (string, error)

	// NewPost publishes a post as the current user.
	NewPost(ctx context.Context, content string) error

	// ToggleFollow follows or unfollows userID for the current user.
	ToggleFollow(ctx context.Context, userID int) error
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code   int
	Status string
	// Detail is the "error" field of a JSON error body, if there was one.
	Detail string
}

// Error formats as "<status> - <statusText>", e.g. "404 - Not Found".
func (e *StatusError) Error() string {
	return fmt.Sprintf("%d - %s", e.Code, e.Status)
}

// ErrorCode tags every HTTP failure with errors.CodeHTTP.
func (e *StatusError) ErrorCode() string {
	return errors.CodeHTTP
}

func (e *StatusError) Unwrap() error {
	return errors.FromStatus(e.Code)
}
