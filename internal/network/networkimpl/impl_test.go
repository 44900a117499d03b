package networkimpl

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/orgball2608/network-feed/internal/domain"
	"github.com/orgball2608/network-feed/internal/network"
	"github.com/orgball2608/network-feed/pkg/config"
	apperrors "github.com/orgball2608/network-feed/pkg/errors"
	"github.com/orgball2608/network-feed/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *NetworkImpl {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Network.BaseURL = srv.URL
	cfg.Network.SessionCookie = "sess-1"
	cfg.Network.CSRFToken = "tok-1"

	client, err := New(Opts{Config: cfg, Logger: logger.Discard()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestGetPosts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/posts/2/profile/7", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if c, err := r.Cookie("sessionid"); err != nil || c.Value != "sess-1" {
			t.Errorf("session cookie missing: %v", err)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("request id header missing")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page": 2, "num_pages": 3, "page_objects": [
			{"id": 5, "creator_id": 7, "creator": "ana", "content": "hi", "create_date": "Mar 04 2021, 09:15 PM", "likes": [1, 7], "total_likes": 2}
		]}`))
	})
	client := newTestClient(t, mux)

	page, err := client.GetPosts(context.Background(), 2, domain.FilterProfile, 7)
	if err != nil {
		t.Fatalf("GetPosts: %v", err)
	}
	if page.Page != 2 || page.NumPages != 3 {
		t.Fatalf("unexpected paging %d/%d", page.Page, page.NumPages)
	}
	if len(page.PageObjects) != 1 {
		t.Fatalf("expected one post, got %d", len(page.PageObjects))
	}
	post := page.PageObjects[0]
	if post.Creator != "ana" || post.TotalLikes != 2 || !post.LikedBy(7) {
		t.Fatalf("post decoded wrong: %+v", post)
	}
}

func TestGetPostsEmptyList(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"page": 1, "num_pages": 1}`))
	}))

	page, err := client.GetPosts(context.Background(), 1, domain.FilterAll, 0)
	if err != nil {
		t.Fatalf("GetPosts: %v", err)
	}
	if page.PageObjects == nil || len(page.PageObjects) != 0 {
		t.Fatalf("expected an empty, non-nil list")
	}
}

func TestGetPostsStatusError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "User was not found."}`))
	}))

	_, err := client.GetPosts(context.Background(), 1, domain.FilterFollowing, 99)
	var statusErr *network.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if err.Error() != "404 - Not Found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if statusErr.Detail != "User was not found." {
		t.Fatalf("unexpected detail %q", statusErr.Detail)
	}
	if !apperrors.IsNotFound(err) {
		t.Fatalf("404 should unwrap to ErrNotFound")
	}
	if !apperrors.HasCode(err, apperrors.CodeHTTP) {
		t.Fatalf("HTTP failures carry the http code, got %q", apperrors.GetCode(err))
	}
}

func TestUpdatePostSendsTokenAndBody(t *testing.T) {
	var got updatePostRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/update_post" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-CSRFToken") != "tok-1" {
			t.Errorf("csrf header missing")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message": "Post updated successfully."}`))
	}))

	if err := client.UpdatePost(context.Background(), 5, "edited"); err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	if got.ID != 5 || got.Content != "edited" {
		t.Fatalf("unexpected body %+v", got)
	}
}

func TestUpdatePostForbidden(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "Only the post creator can edit."}`))
	}))

	err := client.UpdatePost(context.Background(), 5, "edited")
	if err == nil || err.Error() != "403 - Forbidden" {
		t.Fatalf("expected 403 error, got %v", err)
	}
	if !apperrors.IsForbidden(err) {
		t.Fatalf("403 should unwrap to ErrForbidden")
	}
}

func TestToggleLike(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/toggle_like_post/5" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message": "Post was liked."}`))
	}))

	msg, err := client.ToggleLike(context.Background(), 5)
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if msg != "Post was liked." {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestToggleLikeLoginRedirect(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login?next=/toggle_like_post/5", http.StatusFound)
	}))

	_, err := client.ToggleLike(context.Background(), 5)
	if err == nil || err.Error() != "302 - Found" {
		t.Fatalf("expected redirect to surface as an error, got %v", err)
	}
}

func TestDecodeFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))

	_, err := client.GetPosts(context.Background(), 1, domain.FilterAll, 0)
	if !apperrors.HasCode(err, apperrors.CodeDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestNewPostSubmitsForm(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/new_post" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("post_content"); got != "hello there" {
			t.Errorf("unexpected content %q", got)
		}
		if r.PostForm.Get("csrfmiddlewaretoken") != "tok-1" || r.Header.Get("X-CSRFToken") != "tok-1" {
			t.Errorf("anti-forgery token missing")
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}))

	if err := client.NewPost(context.Background(), "hello there"); err != nil {
		t.Fatalf("NewPost: %v", err)
	}
}

func TestNewPostLoginRedirect(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login?next=/new_post", http.StatusFound)
	}))

	err := client.NewPost(context.Background(), "hello")
	if err == nil || err.Error() != "302 - Found" {
		t.Fatalf("a login redirect is a failure, got %v", err)
	}
}

func TestToggleFollow(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/follow_user/7" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		http.Redirect(w, r, "/profile/7", http.StatusFound)
	}))

	if err := client.ToggleFollow(context.Background(), 7); err != nil {
		t.Fatalf("ToggleFollow: %v", err)
	}
}

func TestToggleFollowServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	err := client.ToggleFollow(context.Background(), 7)
	if err == nil || err.Error() != "500 - Internal Server Error" {
		t.Fatalf("expected a 500, got %v", err)
	}
	if !apperrors.HasCode(err, apperrors.CodeHTTP) {
		t.Fatalf("expected the http code")
	}
}
