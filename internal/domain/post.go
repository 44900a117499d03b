package domain

// PageSize is the number of posts the server puts on one page.
const PageSize = 10

// Post is a read copy of a post as served by the posts API.
type Post struct {
	ID         int    `json:"id"`
	CreatorID  int    `json:"creator_id"`
	Creator    string `json:"creator"`
	Content    string `json:"content"`
	CreateDate string `json:"create_date"` // already formatted by the server, e.g. "Mar 04 2021, 09:15 PM"
	Likes      []int  `json:"likes"`
	TotalLikes int    `json:"total_likes"`
}

// LikedBy reports whether userID is among the post's likes.
func (p Post) LikedBy(userID int) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Page is one page of the feed.
type Page struct {
	PageObjects []Post `json:"page_objects"`
	Page        int    `json:"page"`
	NumPages    int    `json:"num_pages"`
}
