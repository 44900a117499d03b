package networkimpl

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/orgball2608/network-feed/internal/domain"
)

// GetPosts calls GET /posts/{page}/{filter}/{id}.
func (n *NetworkImpl) GetPosts(ctx context.Context, page int, filter domain.Filter, id int) (*domain.Page, error) {
	var result domain.Page
	path := []string{"posts", strconv.Itoa(page), filter.String(), strconv.Itoa(id)}
	if err := n.do(ctx, request{method: http.MethodGet, path: path, out: &result}); err != nil {
		return nil, err
	}
	if result.PageObjects == nil {
		result.PageObjects = []domain.Post{}
	}
	return &result, nil
}

type updatePostRequest struct {
	Content string `json:"content"`
	ID      int    `json:"id"`
}

// UpdatePost calls POST /update_post with the anti-forgery token attached.
func (n *NetworkImpl) UpdatePost(ctx context.Context, postID int, content string) error {
	n.logger.Info("Updating post", "post_id", postID)
	return n.do(ctx, request{
		method: http.MethodPost,
		path:   []string{"update_post"},
		json:   updatePostRequest{Content: content, ID: postID},
	})
}

type messageResponse struct {
	Message string `json:"message"`
}

// ToggleLike calls GET /toggle_like_post/{id}.
func (n *NetworkImpl) ToggleLike(ctx context.Context, postID int) (string, error) {
	var resp messageResponse
	if err := n.do(ctx, request{method: http.MethodGet, path: []string{"toggle_like_post", strconv.Itoa(postID)}, out: &resp}); err != nil {
		return "", err
	}
	n.logger.Info("Like toggled", "post_id", postID, "message", resp.Message)
	return resp.Message, nil
}

// NewPost submits the new post form (POST /new_post). The view redirects to
// the index page when the post was saved.
func (n *NetworkImpl) NewPost(ctx context.Context, content string) error {
	err := n.do(ctx, request{
		method:     http.MethodPost,
		path:       []string{"new_post"},
		form:       url.Values{"post_content": {content}},
		redirectOK: true,
	})
	if err != nil {
		return err
	}
	n.logger.Info("Post published")
	return nil
}

// ToggleFollow calls GET /follow_user/{id}, which redirects back to the
// profile page.
func (n *NetworkImpl) ToggleFollow(ctx context.Context, userID int) error {
	err := n.do(ctx, request{
		method:     http.MethodGet,
		path:       []string{"follow_user", strconv.Itoa(userID)},
		redirectOK: true,
	})
	if err != nil {
		return err
	}
	n.logger.Info("Follow toggled", "user_id", userID)
	return nil
}
