package feed

import (
	"testing"

	"github.com/orgball2608/network-feed/internal/domain"
)

func TestBuildPager(t *testing.T) {
	tests := []struct {
		name         string
		page, total  int
		wantCurrent  int
		wantLabels   []string
		wantActive   string
		prevDisabled bool
		nextDisabled bool
	}{
		{
			name: "single page", page: 1, total: 1, wantCurrent: 1,
		},
		{
			name: "no pages", page: 1, total: 0, wantCurrent: 1,
		},
		{
			name: "first of three", page: 1, total: 3, wantCurrent: 1,
			wantLabels:   []string{"previous", "1", "2", "3", "next"},
			wantActive:   "1",
			prevDisabled: true,
		},
		{
			name: "middle", page: 2, total: 3, wantCurrent: 2,
			wantLabels: []string{"previous", "1", "2", "3", "next"},
			wantActive: "2",
		},
		{
			name: "last", page: 3, total: 3, wantCurrent: 3,
			wantLabels:   []string{"previous", "1", "2", "3", "next"},
			wantActive:   "3",
			nextDisabled: true,
		},
		{
			name: "page past the end is clamped", page: 9, total: 2, wantCurrent: 2,
			wantLabels:   []string{"previous", "1", "2", "next"},
			wantActive:   "2",
			nextDisabled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pager := BuildPager(tt.page, tt.total)
			if pager.Current != tt.wantCurrent {
				t.Fatalf("current = %d, want %d", pager.Current, tt.wantCurrent)
			}
			if len(pager.Controls) != len(tt.wantLabels) {
				t.Fatalf("got %d controls, want %d", len(pager.Controls), len(tt.wantLabels))
			}
			if len(tt.wantLabels) == 0 {
				return
			}

			var active []string
			for i, c := range pager.Controls {
				if c.Label != tt.wantLabels[i] {
					t.Errorf("control %d label = %q, want %q", i, c.Label, tt.wantLabels[i])
				}
				if c.Active {
					active = append(active, c.Label)
				}
				if c.Disabled && c.Intent != nil {
					t.Errorf("disabled control %q must not carry an intent", c.Label)
				}
			}
			if len(active) != 1 || active[0] != tt.wantActive {
				t.Errorf("active = %v, want exactly %q", active, tt.wantActive)
			}

			prev := pager.Controls[0]
			next := pager.Controls[len(pager.Controls)-1]
			if prev.Disabled != tt.prevDisabled {
				t.Errorf("previous disabled = %v, want %v", prev.Disabled, tt.prevDisabled)
			}
			if next.Disabled != tt.nextDisabled {
				t.Errorf("next disabled = %v, want %v", next.Disabled, tt.nextDisabled)
			}
			if !prev.Disabled && prev.Intent.Page != tt.wantCurrent-1 {
				t.Errorf("previous goes to %d", prev.Intent.Page)
			}
			if !next.Disabled && next.Intent.Page != tt.wantCurrent+1 {
				t.Errorf("next goes to %d", next.Intent.Page)
			}
		})
	}
}

func TestCreateButton(t *testing.T) {
	post := domain.Post{ID: 5}

	edit := CreateButton(ControlEdit, post, false)
	if edit.ID != "Edit-5" || edit.Label != "Edit" || edit.Intent.Kind != IntentEdit {
		t.Fatalf("unexpected edit control %+v", edit)
	}

	like := CreateButton(ControlLike, post, false)
	unlike := CreateButton(ControlLike, post, true)
	if like.Label != "Like" || unlike.Label != "Unlike" {
		t.Fatalf("like labels = %q / %q", like.Label, unlike.Label)
	}
	if unlike.ID != "Like-5" || unlike.Intent.Kind != IntentLike {
		t.Fatalf("unexpected unlike control %+v", unlike)
	}

	update := CreateButton(ControlUpdate, post, false)
	if update.Intent.Kind != IntentUpdate || update.Intent.PostID != 5 {
		t.Fatalf("unexpected update control %+v", update)
	}

	other := CreateButton("Share", post, false)
	if other.Intent != nil || other.ID != "Share-5" {
		t.Fatalf("unknown kinds get a bare control, got %+v", other)
	}
}
