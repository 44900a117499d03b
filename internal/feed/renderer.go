package feed

import (
	"context"
	"sync"

	"github.com/orgball2608/network-feed/internal/domain"
	"github.com/orgball2608/network-feed/internal/network"
	"github.com/orgball2608/network-feed/pkg/errors"
	"github.com/orgball2608/network-feed/pkg/logger"
)

var (
	// ErrStale is returned by a load whose response arrived after a newer
	// load was issued. The response is dropped and the view is untouched.
	ErrStale = errors.NewWithCode(errors.CodeStale, "feed load superseded by a newer one")

	ErrEmptyContent  = errors.NewWithCode(errors.CodeValidation, "Please enter content for this post.")
	ErrNotEditable   = errors.NewWithCode(errors.CodeValidation, "only the author can edit this post")
	ErrUnknownPost   = errors.NewWithCode(errors.CodeValidation, "post is not on the current page")
	ErrUnknownIntent = errors.NewWithCode(errors.CodeValidation, "unknown intent")
	ErrNotFollowable = errors.NewWithCode(errors.CodeValidation, "this feed has no profile to follow")
)

// Renderer owns the state of one feed view: the page being shown, the
// per-post edit state and the generation of the latest load.
type Renderer struct {
	client network.Client
	viewer domain.Viewer
	logger logger.Logger

	mu          sync.Mutex
	generation  uint64
	currentPage int
	view        View
}

func New(client network.Client, viewer domain.Viewer, log logger.Logger) *Renderer {
	if viewer.Filter == "" {
		viewer.Filter = domain.FilterAll
	}
	return &Renderer{
		client: client,
		viewer: viewer,
		logger: log.WithComponent("FeedRenderer"),
		view:   View{Viewer: viewer},
	}
}

func (r *Renderer) Viewer() domain.Viewer {
	return r.viewer
}

// CurrentPage is the page recorded by the last successful load, or 1 before
// anything was loaded.
func (r *Renderer) CurrentPage() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentPageLocked()
}

func (r *Renderer) currentPageLocked() int {
	if r.currentPage < 1 {
		return 1
	}
	return r.currentPage
}

// View returns a copy of the current view.
func (r *Renderer) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view.clone()
}

// LoadAllPosts fetches page (1 when page < 1) and rebuilds the whole list.
// On failure the previous items stay and View.Err carries the error text.
func (r *Renderer) LoadAllPosts(ctx context.Context, page int) (View, error) {
	if page < 1 {
		page = 1
	}

	r.mu.Lock()
	r.generation++
	gen := r.generation
	r.mu.Unlock()

	resp, err := r.client.GetPosts(ctx, page, r.viewer.Filter, r.viewer.TargetID())

	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation {
		r.logger.Debug("Dropping stale feed response", "page", page, "generation", gen, "latest", r.generation)
		return r.view.clone(), ErrStale
	}

	if err != nil {
		r.logger.Error("Failed to load posts",
			"page", page,
			"filter", r.viewer.Filter,
			"error", err)
		r.view.Err = err.Error()
		r.view.Generation = gen
		return r.view.clone(), errors.Wrap(err, "failed to load posts")
	}

	items := make([]ItemView, 0, len(resp.PageObjects))
	for _, post := range resp.PageObjects {
		items = append(items, r.buildItem(post))
	}

	r.view = View{
		Viewer:     r.viewer,
		Items:      items,
		Empty:      len(items) == 0,
		Generation: gen,
		Follow:     r.followControl(),
	}
	if r.view.Empty {
		r.view.Notice = NoPostsNotice
	}
	r.loadPaginatorLocked(resp.Page, resp.NumPages)

	r.logger.Debug("Feed rendered", "page", r.currentPage, "num_pages", resp.NumPages, "posts", len(items))
	return r.view.clone(), nil
}

// LoadPaginator rebuilds the pager and records page as the current page.
func (r *Renderer) LoadPaginator(page, total int) PagerView {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadPaginatorLocked(page, total)
	return r.view.clone().Pager
}

func (r *Renderer) loadPaginatorLocked(page, total int) {
	r.view.Pager = BuildPager(page, total)
	r.currentPage = r.view.Pager.Current
}

func (r *Renderer) buildItem(post domain.Post) ItemView {
	creator := r.viewer.IsAuthor(post)
	liked := r.viewer.Likes(post)

	item := ItemView{
		Post:        post,
		PostCreator: creator,
		Liked:       liked,
		State:       StateViewing,
		Draft:       post.Content,
	}

	if r.viewer.LoggedIn && creator {
		item.EditControls = append(item.EditControls, CreateButton(ControlUpdate, post, false))
		item.Controls = append(item.Controls, CreateButton(ControlEdit, post, false))
	}
	if r.viewer.LoggedIn {
		item.Controls = append(item.Controls, CreateButton(ControlLike, post, liked))
	}
	return item
}

// followControl is set on logged-in profile feeds of other users.
func (r *Renderer) followControl() *Control {
	v := r.viewer
	if !v.LoggedIn || v.Filter != domain.FilterProfile || v.ProfileID == 0 || v.ProfileID == v.UserID {
		return nil
	}
	c := FollowButton(v.ProfileID)
	return &c
}

// itemLocked returns the item for postID or nil.
func (r *Renderer) itemLocked(postID int) *ItemView {
	for i := range r.view.Items {
		if r.view.Items[i].Post.ID == postID {
			return &r.view.Items[i]
		}
	}
	return nil
}
