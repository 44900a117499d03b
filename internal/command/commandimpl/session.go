package commandimpl

import (
	"sync"
	"time"

	"github.com/orgball2608/network-feed/internal/feed"
)

// session is the feed a chat is looking at: one renderer, the message that
// shows it, and the post whose new text the chat is expected to send next.
type session struct {
	renderer  *feed.Renderer
	messageID int
	// lastUsed is guarded by CommandImpl.mu.
	lastUsed time.Time

	mu      sync.Mutex
	editing int
}

func (s *session) editingPost() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

func (s *session) setEditing(postID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = postID
}

// sync clears the pending edit once view no longer shows that post in its
// edit form, e.g. after a page change rebuilt the list.
func (s *session) sync(view feed.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == 0 {
		return
	}
	for _, item := range view.Items {
		if item.Post.ID == s.editing && item.Editing() {
			return
		}
	}
	s.editing = 0
}

// session returns the chat's feed, or nil when there is none or it has not
// been used for sessionTTL.
func (c *CommandImpl) session(chatID int64) *session {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	s, ok := c.sessions[chatID]
	if !ok {
		return nil
	}
	if now.Sub(s.lastUsed) > sessionTTL {
		delete(c.sessions, chatID)
		return nil
	}
	s.lastUsed = now
	return s
}

func (c *CommandImpl) setSession(chatID int64, s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.evictLocked(now)
	s.lastUsed = now
	c.sessions[chatID] = s
}

func (c *CommandImpl) evictLocked(now time.Time) {
	for chatID, s := range c.sessions {
		if now.Sub(s.lastUsed) > sessionTTL {
			delete(c.sessions, chatID)
		}
	}
}
