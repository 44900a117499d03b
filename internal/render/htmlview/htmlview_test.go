package htmlview

import (
	"bytes"
	"strings"
	"testing"

	"github.com/orgball2608/network-feed/internal/domain"
	"github.com/orgball2608/network-feed/internal/feed"
)

func sampleView() feed.View {
	post := domain.Post{ID: 5, CreatorID: 1, Creator: "ana", Content: "hi <script>alert(1)</script><b>there</b>", CreateDate: "Mar 04 2021, 09:15 PM", Likes: []int{1}, TotalLikes: 1}
	return feed.View{
		Viewer: domain.Viewer{LoggedIn: true, UserID: 1},
		Items: []feed.ItemView{{
			Post:        post,
			PostCreator: true,
			Liked:       true,
			State:       feed.StateViewing,
			Draft:       post.Content,
			Controls: []feed.Control{
				feed.CreateButton(feed.ControlEdit, post, false),
				feed.CreateButton(feed.ControlLike, post, true),
			},
			EditControls: []feed.Control{feed.CreateButton(feed.ControlUpdate, post, false)},
		}},
		Pager: feed.BuildPager(1, 3),
	}
}

func render(t *testing.T, opts Options, view feed.View) string {
	t.Helper()
	v, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var buf bytes.Buffer
	if err := v.Render(&buf, view); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestRenderList(t *testing.T) {
	out := render(t, Options{}, sampleView())

	for _, want := range []string{
		`class="list-group-item flex-column align-items-start"`,
		`<a href="/profile/1">ana</a>`,
		`<small>1 like(s)</small>`,
		`<b>there</b>`,
		`id="Edit-5"`,
		`data-intent="edit"`,
		`id="Like-5"`,
		`>Unlike</button>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("post content must be sanitised:\n%s", out)
	}
	if strings.Contains(out, "<form") {
		t.Fatalf("forms are only rendered with an action path")
	}
}

func TestRenderPager(t *testing.T) {
	out := render(t, Options{PagePath: "/feed"}, sampleView())

	for _, want := range []string{
		`<li class="page-item disabled"><a class="page-link disabled">previous</a></li>`,
		`<li class="page-item active"><a class="page-link" href="/feed?page=1" data-intent="page" data-page="1">1</a></li>`,
		`href="/feed?page=3"`,
		`data-page="2">next</a>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q\n%s", want, out)
		}
	}
}

func TestRenderEmptyAndError(t *testing.T) {
	out := render(t, Options{}, feed.View{Empty: true, Notice: feed.NoPostsNotice, Err: "500 - Internal Server Error"})

	if !strings.Contains(out, `<h5 class="mt-3 ml-3">No Posts to Display.</h5>`) {
		t.Errorf("missing notice:\n%s", out)
	}
	if !strings.Contains(out, `<div class="alert alert-danger">Error: 500 - Internal Server Error</div>`) {
		t.Errorf("missing error alert:\n%s", out)
	}
	if strings.Contains(out, "page-item") {
		t.Errorf("no pager expected for an empty view")
	}
}

func TestRenderEditingItem(t *testing.T) {
	view := sampleView()
	view.Items[0].State = feed.StateEditing
	view.Items[0].Draft = "<i>draft</i>"
	view.Items[0].EditError = "Please enter content for this post."

	out := render(t, Options{ActionPath: "/feed", PagePath: "/feed"}, view)

	for _, want := range []string{
		`<form method="post" action="/feed/update/5?page=1">`,
		`<textarea class="form-control is-invalid" id="content-5" name="post_content">&lt;i&gt;draft&lt;/i&gt;</textarea>`,
		`id="update-alert-5">Please enter content for this post.</div>`,
		`id="Update-5"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, `id="post-div-5"`) || strings.Contains(out, `id="Like-5"`) {
		t.Errorf("the post body and buttons are hidden while editing:\n%s", out)
	}
}

func TestRenderForms(t *testing.T) {
	view := sampleView()
	view.Items[0].Alerts = []string{"Error: 404 - Not Found"}

	out := render(t, Options{ActionPath: "/feed", PagePath: "/feed"}, view)

	for _, want := range []string{
		`<form method="post" action="/feed/like/5?page=1" class="d-inline">`,
		`href="/feed?page=1&amp;edit=5"`,
		`<div class="alert alert-danger">Error: 404 - Not Found</div>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q\n%s", want, out)
		}
	}
}

func TestRenderFormsCarryCSRFToken(t *testing.T) {
	view := sampleView()
	out := render(t, Options{ActionPath: "/feed", PagePath: "/feed", CSRFToken: "tok-1"}, view)

	hidden := `<input type="hidden" name="csrfmiddlewaretoken" value="tok-1">`
	if got := strings.Count(out, hidden); got != strings.Count(out, "<form") || got == 0 {
		t.Fatalf("expected one token per form, got %d tokens for %d forms\n%s", got, strings.Count(out, "<form"), out)
	}

	view.Items[0].State = feed.StateEditing
	out = render(t, Options{ActionPath: "/feed", PagePath: "/feed", CSRFToken: "tok-1"}, view)
	if !strings.Contains(out, `action="/feed/update/5?page=1">`+"\n"+hidden) {
		t.Fatalf("update form is missing the token\n%s", out)
	}
}

func TestRenderFollowControl(t *testing.T) {
	view := sampleView()
	follow := feed.FollowButton(7)
	view.Follow = &follow

	out := render(t, Options{ActionPath: "/feed", PagePath: "/feed", CSRFToken: "tok-1"}, view)
	for _, want := range []string{
		`<form method="post" action="/feed/follow/7?page=1" class="d-inline">`,
		`id="Follow-7" data-user-id="7" data-intent="follow">Follow / Unfollow</button>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q\n%s", want, out)
		}
	}

	out = render(t, Options{}, view)
	if !strings.Contains(out, `<button class="ml-1 mr-2 btn btn-outline-info mt-1 btn-sm" id="Follow-7" data-user-id="7" data-intent="follow">`) {
		t.Errorf("follow button missing\n%s", out)
	}

	out = render(t, Options{}, sampleView())
	if strings.Contains(out, "follow-div") {
		t.Errorf("no follow control expected\n%s", out)
	}
}
