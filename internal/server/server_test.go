package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/orgball2608/network-feed/internal/domain"
	"github.com/orgball2608/network-feed/internal/network"
	mock_network "github.com/orgball2608/network-feed/internal/network/mocks"
	"github.com/orgball2608/network-feed/pkg/config"
	"github.com/orgball2608/network-feed/pkg/logger"
	"go.uber.org/mock/gomock"
)

type testServer struct {
	*httptest.Server
	token string
}

// postForm submits form to path with the server's CSRF token.
func (ts *testServer) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set(csrfField, ts.token)
	resp, err := noRedirects().PostForm(ts.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func newTestServer(t *testing.T) (*testServer, *mock_network.MockClient) {
	return newTestServerWith(t, func(*config.Config) {})
}

func newTestServerWith(t *testing.T, configure func(*config.Config)) (*testServer, *mock_network.MockClient) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mock_network.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Network.LoggedIn = true
	cfg.Network.UserID = 1
	cfg.Network.Filter = "all"
	configure(cfg)

	s, err := New(Opts{Network: client, Logger: logger.Discard(), Config: cfg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, token: s.token}, client
}

func noRedirects() *http.Client {
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}

func page(n int) *domain.Page {
	return &domain.Page{
		Page:     n,
		NumPages: 2,
		PageObjects: []domain.Post{
			{ID: 5, CreatorID: 1, Creator: "ana", Content: "hello", CreateDate: "Mar 04 2021, 09:15 PM"},
		},
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	if body := readBody(t, resp); resp.StatusCode != http.StatusOK || body != "ok" {
		t.Fatalf("unexpected response %d %q", resp.StatusCode, body)
	}
}

func TestFeedPage(t *testing.T) {
	srv, client := newTestServer(t)
	client.EXPECT().GetPosts(gomock.Any(), 2, domain.FilterAll, 1).Return(page(2), nil)

	resp, err := http.Get(srv.URL + "/feed?page=2")
	if err != nil {
		t.Fatalf("GET /feed: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	for _, want := range []string{"<!DOCTYPE html>", `id="post-div-5"`, `<li class="page-item active"><a class="page-link" href="/feed?page=2"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body is missing %q\n%s", want, body)
		}
	}
}

func TestFeedPageWithEditForm(t *testing.T) {
	srv, client := newTestServer(t)
	client.EXPECT().GetPosts(gomock.Any(), 1, domain.FilterAll, 1).Return(page(1), nil)

	resp, err := http.Get(srv.URL + "/feed?page=1&edit=5")
	if err != nil {
		t.Fatalf("GET /feed: %v", err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, `<form method="post" action="/feed/update/5?page=1">`) {
		t.Fatalf("edit form missing\n%s", body)
	}
	if !strings.Contains(body, `name="csrfmiddlewaretoken" value="`+srv.token+`"`) {
		t.Fatalf("edit form is missing the CSRF token\n%s", body)
	}
}

func TestFeedPageLoadError(t *testing.T) {
	srv, client := newTestServer(t)
	client.EXPECT().GetPosts(gomock.Any(), 1, domain.FilterAll, 1).Return(nil, &network.StatusError{Code: 404, Status: "Not Found"})

	resp, err := http.Get(srv.URL + "/feed")
	if err != nil {
		t.Fatalf("GET /feed: %v", err)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Error: 404 - Not Found") {
		t.Fatalf("error missing\n%s", body)
	}
}

func TestLikeRedirectsBack(t *testing.T) {
	srv, client := newTestServer(t)
	gomock.InOrder(
		client.EXPECT().GetPosts(gomock.Any(), 2, domain.FilterAll, 1).Return(page(2), nil),
		client.EXPECT().ToggleLike(gomock.Any(), 5).Return("Post was liked.", nil),
		client.EXPECT().GetPosts(gomock.Any(), 2, domain.FilterAll, 1).Return(page(2), nil),
	)

	resp := srv.postForm(t, "/feed/like/5?page=2", nil)
	readBody(t, resp)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/feed?page=2" {
		t.Fatalf("expected redirect to page 2, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestLikeFailureShowsAlert(t *testing.T) {
	srv, client := newTestServer(t)
	gomock.InOrder(
		client.EXPECT().GetPosts(gomock.Any(), 1, domain.FilterAll, 1).Return(page(1), nil),
		client.EXPECT().ToggleLike(gomock.Any(), 5).Return("", &network.StatusError{Code: 404, Status: "Not Found"}),
	)

	resp := srv.postForm(t, "/feed/like/5", nil)
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `<div class="alert alert-danger">Error: 404 - Not Found</div>`) {
		t.Fatalf("expected the alert under the post, got %d\n%s", resp.StatusCode, body)
	}
}

func TestUpdate(t *testing.T) {
	srv, client := newTestServer(t)
	gomock.InOrder(
		client.EXPECT().GetPosts(gomock.Any(), 1, domain.FilterAll, 1).Return(page(1), nil),
		client.EXPECT().UpdatePost(gomock.Any(), 5, "edited").Return(nil),
		client.EXPECT().GetPosts(gomock.Any(), 1, domain.FilterAll, 1).Return(page(1), nil),
	)

	resp := srv.postForm(t, "/feed/update/5?page=1", url.Values{"post_content": {"edited"}})
	readBody(t, resp)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected a redirect, got %d", resp.StatusCode)
	}
}

func TestUpdateEmptyContent(t *testing.T) {
	srv, client := newTestServer(t)
	client.EXPECT().GetPosts(gomock.Any(), 1, domain.FilterAll, 1).Return(page(1), nil)

	resp := srv.postForm(t, "/feed/update/5", url.Values{"post_content": {"  "}})
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Please enter content for this post.") || !strings.Contains(body, "is-invalid") {
		t.Fatalf("validation message missing\n%s", body)
	}
}

func TestUpdateOthersPost(t *testing.T) {
	srv, client := newTestServer(t)
	other := page(1)
	other.PageObjects[0].CreatorID = 3
	client.EXPECT().GetPosts(gomock.Any(), 1, domain.FilterAll, 1).Return(other, nil)

	resp := srv.postForm(t, "/feed/update/5", url.Values{"post_content": {"x"}})
	readBody(t, resp)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestBadPostID(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := srv.postForm(t, "/feed/like/abc", nil)
	readBody(t, resp)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPostWithoutTokenIsForbidden(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/feed/like/5", "/feed/update/5", "/feed/follow/7"} {
		resp, err := noRedirects().PostForm(srv.URL+path, url.Values{"post_content": {"x"}})
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		readBody(t, resp)
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("POST %s without a token: expected 403, got %d", path, resp.StatusCode)
		}
	}
}

func TestPostWithWrongTokenIsForbidden(t *testing.T) {
	srv, _ := newTestServer(t)

	form := url.Values{csrfField: {"not-the-token"}}
	resp, err := noRedirects().PostForm(srv.URL+"/feed/like/5", form)
	if err != nil {
		t.Fatalf("POST like: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestCrossOriginPostIsForbidden(t *testing.T) {
	srv, _ := newTestServer(t)

	form := url.Values{csrfField: {srv.token}}
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/feed/like/5", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", "https://evil.example")

	resp, err := noRedirects().Do(req)
	if err != nil {
		t.Fatalf("POST like: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestListensOnLoopbackByDefault(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Host = "127.0.0.1"
	cfg.App.Port = 8080

	s, err := New(Opts{Network: mock_network.NewMockClient(gomock.NewController(t)), Logger: logger.Discard(), Config: cfg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.http.Addr != "127.0.0.1:8080" {
		t.Fatalf("unexpected address %q", s.http.Addr)
	}
}

func TestFollowOnProfileFeed(t *testing.T) {
	srv, client := newTestServerWith(t, func(cfg *config.Config) {
		cfg.Network.Filter = "profile"
		cfg.Network.ProfileID = 7
	})
	gomock.InOrder(
		client.EXPECT().GetPosts(gomock.Any(), 1, domain.FilterProfile, 7).Return(page(1), nil),
		client.EXPECT().ToggleFollow(gomock.Any(), 7).Return(nil),
		client.EXPECT().GetPosts(gomock.Any(), 1, domain.FilterProfile, 7).Return(page(1), nil),
	)

	resp := srv.postForm(t, "/feed/follow/7?page=1", nil)
	readBody(t, resp)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/feed?page=1" {
		t.Fatalf("expected redirect to page 1, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestFollowWithoutProfileIsForbidden(t *testing.T) {
	srv, client := newTestServer(t)
	client.EXPECT().GetPosts(gomock.Any(), 1, domain.FilterAll, 1).Return(page(1), nil)

	resp := srv.postForm(t, "/feed/follow/7", nil)
	readBody(t, resp)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}
