package domain

// Viewer describes who is looking at the feed and which posts they asked for.
type Viewer struct {
	LoggedIn  bool
	UserID    int
	Filter    Filter
	ProfileID int
}

// TargetID is the id placed in the posts URL: the profile being viewed when
// filtering by profile, the current user otherwise.
func (v Viewer) TargetID() int {
	if v.Filter == FilterProfile && v.ProfileID != 0 {
		return v.ProfileID
	}
	return v.UserID
}

// IsAuthor reports whether the viewer wrote p.
func (v Viewer) IsAuthor(p Post) bool {
	return p.CreatorID == v.UserID
}

// Likes reports whether a logged-in viewer has liked p.
func (v Viewer) Likes(p Post) bool {
	return v.LoggedIn && p.LikedBy(v.UserID)
}
