package feed

import (
	"context"
	"fmt"
	"strings"

	"github.com/orgball2608/network-feed/pkg/errors"
)

// Edit switches the author's post to its inline edit form.
func (r *Renderer) Edit(postID int) (View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, err := r.editableLocked(postID)
	if err != nil {
		return r.view.clone(), err
	}
	if !item.Editing() {
		item.State = StateEditing
		item.Draft = item.Post.Content
	}
	return r.view.clone(), nil
}

// CancelEdit closes the edit form without saving.
func (r *Renderer) CancelEdit(postID int) (View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item := r.itemLocked(postID)
	if item == nil {
		return r.view.clone(), ErrUnknownPost
	}
	item.State = StateViewing
	item.Draft = item.Post.Content
	item.EditError = ""
	return r.view.clone(), nil
}

func (r *Renderer) editableLocked(postID int) (*ItemView, error) {
	item := r.itemLocked(postID)
	if item == nil {
		return nil, ErrUnknownPost
	}
	if !r.viewer.LoggedIn || !item.PostCreator {
		return nil, ErrNotEditable
	}
	return item, nil
}

// UpdatePost saves content as the new text of postID. Empty content is
// rejected before anything is sent. On success the feed is reloaded at the
// current page; on failure the form stays open with the error next to it.
func (r *Renderer) UpdatePost(ctx context.Context, postID int, content string) (View, error) {
	r.mu.Lock()
	item, err := r.editableLocked(postID)
	if err != nil {
		view := r.view.clone()
		r.mu.Unlock()
		return view, err
	}

	item.State = StateEditing
	item.Draft = content
	if strings.TrimSpace(content) == "" {
		item.EditError = ErrEmptyContent.Error()
		item.Valid = false
		view := r.view.clone()
		r.mu.Unlock()
		return view, ErrEmptyContent
	}
	page := r.currentPageLocked()
	r.mu.Unlock()

	if err := r.client.UpdatePost(ctx, postID, content); err != nil {
		r.logger.Error("Failed to update post", "post_id", postID, "error", err)

		r.mu.Lock()
		// A reload may have replaced the item while the request was in flight.
		if item := r.itemLocked(postID); item != nil {
			item.State = StateEditing
			item.Draft = content
			item.EditError = err.Error()
			item.Valid = false
		}
		view := r.view.clone()
		r.mu.Unlock()
		return view, errors.Wrap(err, "failed to update post")
	}

	r.mu.Lock()
	if item := r.itemLocked(postID); item != nil {
		item.State = StateViewing
		item.EditError = ""
		item.Valid = true
	}
	r.mu.Unlock()

	r.logger.Info("Post updated", "post_id", postID, "page", page)
	view, err := r.LoadAllPosts(ctx, page)
	if err != nil && !errors.Is(err, ErrStale) {
		// The save went through; show the saved text in place of the form.
		r.mu.Lock()
		if item := r.itemLocked(postID); item != nil {
			item.State = StateViewing
			item.Post.Content = content
			item.Draft = content
			item.EditError = ""
		}
		view = r.view.clone()
		r.mu.Unlock()
		return view, errors.WrapWithCode(err, errors.CodeReload, "post updated but the feed could not be reloaded")
	}
	return view, err
}

// ToggleLikePost likes or unlikes postID and reloads the current page. A
// failure leaves the list alone and adds an alert under the post's buttons.
func (r *Renderer) ToggleLikePost(ctx context.Context, postID int) (View, error) {
	r.mu.Lock()
	page := r.currentPageLocked()
	r.mu.Unlock()

	if _, err := r.client.ToggleLike(ctx, postID); err != nil {
		r.logger.Error("Failed to toggle like", "post_id", postID, "error", err)

		r.mu.Lock()
		if item := r.itemLocked(postID); item != nil {
			item.Alerts = append(item.Alerts, "Error: "+err.Error())
		}
		view := r.view.clone()
		r.mu.Unlock()
		return view, errors.Wrap(err, "failed to toggle like")
	}

	return r.LoadAllPosts(ctx, page)
}

// ToggleFollow follows or unfollows the profile shown by this feed and
// reloads the current page. A failure is reported in View.Err.
func (r *Renderer) ToggleFollow(ctx context.Context, userID int) (View, error) {
	r.mu.Lock()
	if r.view.Follow == nil || r.view.Follow.Intent.UserID != userID {
		view := r.view.clone()
		r.mu.Unlock()
		return view, ErrNotFollowable
	}
	page := r.currentPageLocked()
	r.mu.Unlock()

	if err := r.client.ToggleFollow(ctx, userID); err != nil {
		r.logger.Error("Failed to toggle follow", "user_id", userID, "error", err)

		r.mu.Lock()
		r.view.Err = err.Error()
		view := r.view.clone()
		r.mu.Unlock()
		return view, errors.Wrap(err, "failed to toggle follow")
	}

	return r.LoadAllPosts(ctx, page)
}

// Dispatch performs intent.
func (r *Renderer) Dispatch(ctx context.Context, intent Intent) (View, error) {
	switch intent.Kind {
	case IntentPage:
		return r.LoadAllPosts(ctx, intent.Page)
	case IntentEdit:
		return r.Edit(intent.PostID)
	case IntentCancel:
		return r.CancelEdit(intent.PostID)
	case IntentUpdate:
		return r.UpdatePost(ctx, intent.PostID, intent.Content)
	case IntentLike:
		return r.ToggleLikePost(ctx, intent.PostID)
	case IntentFollow:
		return r.ToggleFollow(ctx, intent.UserID)
	}
	return r.View(), errors.Wrap(ErrUnknownIntent, fmt.Sprintf("intent %q", intent.Kind))
}

// Refresh reloads the current page.
func (r *Renderer) Refresh(ctx context.Context) (View, error) {
	return r.LoadAllPosts(ctx, r.CurrentPage())
}
