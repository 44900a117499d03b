package feed

import (
	"fmt"

	"github.com/orgball2608/network-feed/internal/domain"
)

type ControlKind string

const (
	ControlEdit   ControlKind = "Edit"
	ControlUpdate ControlKind = "Update"
	ControlLike   ControlKind = "Like"
	ControlFollow ControlKind = "Follow"
)

// LabelUnlike replaces the Like label once the viewer has liked the post.
const LabelUnlike = "Unlike"

// LabelFollow is the follow control's label. The posts API does not say
// whether the viewer already follows the profile.
const LabelFollow = "Follow / Unfollow"

// Control is a button bound to a post.
type Control struct {
	Kind   ControlKind
	ID     string
	Label  string
	PostID int
	Intent *Intent
}

// CreateButton builds the control of the given kind for post. liked only
// matters for ControlLike. Kinds outside the three known ones get a bare
// control without an intent.
func CreateButton(kind ControlKind, post domain.Post, liked bool) Control {
	c := Control{
		Kind:   kind,
		ID:     fmt.Sprintf("%s-%d", kind, post.ID),
		Label:  string(kind),
		PostID: post.ID,
	}

	switch kind {
	case ControlEdit:
		c.Intent = &Intent{Kind: IntentEdit, PostID: post.ID}
	case ControlUpdate:
		c.Intent = &Intent{Kind: IntentUpdate, PostID: post.ID}
	case ControlLike:
		c.Intent = &Intent{Kind: IntentLike, PostID: post.ID}
		if liked {
			c.Label = LabelUnlike
		}
	}
	return c
}

// FollowButton builds the control that toggles following userID.
func FollowButton(userID int) Control {
	return Control{
		Kind:   ControlFollow,
		ID:     fmt.Sprintf("%s-%d", ControlFollow, userID),
		Label:  LabelFollow,
		Intent: &Intent{Kind: IntentFollow, UserID: userID},
	}
}
