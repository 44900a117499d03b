package htmlview

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/orgball2608/network-feed/internal/feed"
	"github.com/orgball2608/network-feed/pkg/errors"
)

const (
	classItem   = "list-group-item flex-column align-items-start"
	classRow    = "d-flex w-100 justify-content-between"
	classButton = "ml-1 mr-2 btn btn-outline-info mt-1 btn-sm"
)

// Options controls where the rendered controls point to. With an empty
// ActionPath the markup only carries data-* attributes and a script or
// adapter is expected to turn clicks into intents.
type Options struct {
	// ActionPath is the prefix of the like and update form actions,
	// e.g. "/feed" renders <form action="/feed/like/5?page=1">.
	ActionPath string
	// PagePath is the target of pager links. Defaults to "" (same page).
	PagePath string
	// CSRFToken is rendered as a hidden csrfmiddlewaretoken input in every
	// form.
	CSRFToken string
}

// View renders a feed.View as the bootstrap list and pager markup.
type View struct {
	opts   Options
	policy *bluemonday.Policy
	tmpl   *template.Template
}

func New(opts Options) (*View, error) {
	v := &View{
		opts:   opts,
		policy: bluemonday.UGCPolicy(),
	}

	tmpl, err := template.New("feed").Funcs(template.FuncMap{
		"content":    v.content,
		"pageHref":   v.pageHref,
		"editHref":   v.editHref,
		"action":     v.action,
		"inputClass": inputClass,
		"pageClass":  pageClass,
		"linkClass":  linkClass,
	}).Parse(feedTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse feed template")
	}
	v.tmpl = tmpl
	return v, nil
}

// Render writes the list and the pager for view to w.
func (v *View) Render(w io.Writer, view feed.View) error {
	data := struct {
		feed.View
		ClassItem   string
		ClassRow    string
		ClassButton string
		Forms       bool
		CSRFToken   string
	}{
		View:        view,
		ClassItem:   classItem,
		ClassRow:    classRow,
		ClassButton: classButton,
		Forms:       v.opts.ActionPath != "",
		CSRFToken:   v.opts.CSRFToken,
	}
	if err := v.tmpl.Execute(w, data); err != nil {
		return errors.Wrap(err, "failed to render feed")
	}
	return nil
}

// content sanitises user supplied post text before it lands in the page.
func (v *View) content(s string) template.HTML {
	return template.HTML(v.policy.Sanitize(s))
}

func (v *View) pageHref(page int) string {
	return fmt.Sprintf("%s?page=%d", v.opts.PagePath, page)
}

func (v *View) editHref(page, postID int) string {
	return fmt.Sprintf("%s?page=%d&edit=%d", v.opts.PagePath, page, postID)
}

// action is the form target for a control acting on id, a post id or for
// Follow a user id.
func (v *View) action(kind feed.ControlKind, id, page int) string {
	return fmt.Sprintf("%s/%s/%d?page=%d", strings.TrimSuffix(v.opts.ActionPath, "/"), strings.ToLower(string(kind)), id, page)
}

func inputClass(item feed.ItemView) string {
	switch {
	case item.EditError != "":
		return "form-control is-invalid"
	case item.Valid:
		return "form-control is-valid"
	}
	return "form-control"
}

func pageClass(c feed.PageControl) string {
	switch {
	case c.Active:
		return "page-item active"
	case c.Disabled:
		return "page-item disabled"
	}
	return "page-item"
}

func linkClass(c feed.PageControl) string {
	if c.Disabled {
		return "page-link disabled"
	}
	return "page-link"
}

const feedTemplate = `{{- define "csrf"}}{{with .CSRFToken}}
<input type="hidden" name="csrfmiddlewaretoken" value="{{.}}">{{end}}{{end -}}
{{- if .Err}}<div class="alert alert-danger">Error: {{.Err}}</div>
{{end -}}
{{- with .Follow}}
<div id="follow-div">
{{- if $.Forms}}
<form method="post" action="{{action .Kind .Intent.UserID $.Pager.Current}}" class="d-inline">
{{- template "csrf" $}}
<button type="submit" class="{{$.ClassButton}}" id="{{.ID}}" data-user-id="{{.Intent.UserID}}" data-intent="{{.Intent.Kind}}">{{.Label}}</button>
</form>
{{- else}}
<button class="{{$.ClassButton}}" id="{{.ID}}" data-user-id="{{.Intent.UserID}}" data-intent="{{.Intent.Kind}}">{{.Label}}</button>
{{- end}}
</div>
{{end -}}
<ul class="list-group" id="all_posts" data-generation="{{.Generation}}">
{{- if .Empty}}
<h5 class="mt-3 ml-3">{{.Notice}}</h5>
{{- end}}
{{- $root := .}}
{{- range .Items}}
<li class="{{$root.ClassItem}}">
{{- if not .Editing}}
<div id="post-div-{{.Post.ID}}">
<div class="{{$root.ClassRow}}"><h5 class="mb-0"><a href="/profile/{{.Post.CreatorID}}">{{.Post.Creator}}</a></h5></div>
<div class="{{$root.ClassRow}}"><small>{{.Post.CreateDate}}</small><small>{{.Post.TotalLikes}} like(s)</small></div>
<div class="{{$root.ClassRow}}"><p>{{content .Post.Content}}</p></div>
</div>
{{- else}}
<div id="edit-div-{{.Post.ID}}">
{{- if $root.Forms}}
<form method="post" action="{{action "Update" .Post.ID $root.Pager.Current}}">
{{- template "csrf" $root}}
{{- end}}
<textarea class="{{inputClass .}}" id="content-{{.Post.ID}}" name="post_content">{{.Draft}}</textarea>
<div class="invalid-feedback font-weight-bold" id="update-alert-{{.Post.ID}}">{{.EditError}}</div>
{{- range .EditControls}}
<button type="submit" class="{{$root.ClassButton}}" id="{{.ID}}" data-post-id="{{.PostID}}" data-intent="{{.Intent.Kind}}">{{.Label}}</button>
{{- end}}
{{- if $root.Forms}}
<a class="{{$root.ClassButton}}" href="{{pageHref $root.Pager.Current}}">Cancel</a>
</form>
{{- end}}
</div>
{{- end}}
<div id="button-div-{{.Post.ID}}">
{{- if not .Editing}}
{{- range .Controls}}
{{- if and $root.Forms (eq .Kind "Edit")}}
<a class="{{$root.ClassButton}}" id="{{.ID}}" data-post-id="{{.PostID}}" data-intent="{{.Intent.Kind}}" href="{{editHref $root.Pager.Current .PostID}}">{{.Label}}</a>
{{- else if $root.Forms}}
<form method="post" action="{{action .Kind .PostID $root.Pager.Current}}" class="d-inline">
{{- template "csrf" $root}}
<button type="submit" class="{{$root.ClassButton}}" id="{{.ID}}" data-post-id="{{.PostID}}" data-intent="{{.Intent.Kind}}">{{.Label}}</button>
</form>
{{- else}}
<button class="{{$root.ClassButton}}" id="{{.ID}}" data-post-id="{{.PostID}}"{{with .Intent}} data-intent="{{.Kind}}"{{end}}>{{.Label}}</button>
{{- end}}
{{- end}}
{{- end}}
{{- range .Alerts}}
<div class="alert alert-danger">{{.}}</div>
{{- end}}
</div>
</li>
{{- end}}
</ul>
<ul class="pagination" id="paginator" data-current-page="{{.Pager.Current}}">
{{- range .Pager.Controls}}
<li class="{{pageClass .}}">
{{- if .Disabled}}<a class="{{linkClass .}}">{{.Label}}</a>
{{- else}}<a class="{{linkClass .}}" href="{{pageHref .Page}}" data-intent="page" data-page="{{.Page}}">{{.Label}}</a>
{{- end}}</li>
{{- end}}
</ul>
`
