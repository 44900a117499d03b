package feed

import "github.com/orgball2608/network-feed/internal/domain"

// NoPostsNotice is shown in place of the list when a page has no posts.
const NoPostsNotice = "No Posts to Display."

type IntentKind string

const (
	IntentPage   IntentKind = "page"
	IntentEdit   IntentKind = "edit"
	IntentCancel IntentKind = "cancel"
	IntentUpdate IntentKind = "update"
	IntentLike   IntentKind = "like"
	IntentFollow IntentKind = "follow"
)

// Intent is what a control asks the renderer to do when activated.
// Adapters turn user input into intents and hand them to Dispatch.
type Intent struct {
	Kind    IntentKind
	Page    int
	PostID  int
	UserID  int
	Content string
}

type ItemState string

const (
	StateViewing ItemState = "viewing"
	StateEditing ItemState = "editing"
)

// ItemView is one rendered post.
type ItemView struct {
	Post        domain.Post
	PostCreator bool
	Liked       bool

	State     ItemState
	Draft     string
	EditError string
	Valid     bool
	Alerts    []string

	// Controls live in the post's button area (Edit, Like/Unlike).
	Controls []Control
	// EditControls live in the inline edit form (Update).
	EditControls []Control
}

// Editing reports whether the inline edit form is shown.
func (i ItemView) Editing() bool {
	return i.State == StateEditing
}

type PageControl struct {
	Label    string
	Page     int
	Active   bool
	Disabled bool
	Intent   *Intent
}

type PagerView struct {
	Current  int
	Total    int
	Controls []PageControl
}

// View is a complete, self-contained description of the feed at one point
// in time.
type View struct {
	Viewer     domain.Viewer
	Items      []ItemView
	Empty      bool
	Notice     string
	Err        string
	Pager      PagerView
	Generation uint64
	// Follow toggles following the profile on a profile feed of someone
	// else. Nil everywhere else.
	Follow *Control
}

func (v View) clone() View {
	out := v
	if v.Items != nil {
		out.Items = make([]ItemView, len(v.Items))
		for i, item := range v.Items {
			item.Alerts = append([]string(nil), item.Alerts...)
			item.Controls = cloneControls(item.Controls)
			item.EditControls = cloneControls(item.EditControls)
			item.Post.Likes = append([]int(nil), item.Post.Likes...)
			out.Items[i] = item
		}
	}
	if v.Follow != nil {
		follow := *v.Follow
		follow.Intent = follow.Intent.clone()
		out.Follow = &follow
	}
	if v.Pager.Controls != nil {
		out.Pager.Controls = make([]PageControl, len(v.Pager.Controls))
		for i, c := range v.Pager.Controls {
			c.Intent = c.Intent.clone()
			out.Pager.Controls[i] = c
		}
	}
	return out
}

func cloneControls(controls []Control) []Control {
	if controls == nil {
		return nil
	}
	out := make([]Control, len(controls))
	for i, c := range controls {
		c.Intent = c.Intent.clone()
		out[i] = c
	}
	return out
}

func (i *Intent) clone() *Intent {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}
