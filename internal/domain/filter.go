package domain

import "strings"

// Filter selects which posts the server returns.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterFollowing Filter = "following"
	FilterProfile   Filter = "profile"
)

// ParseFilter normalises s. Empty input means FilterAll; anything else is
// passed through untouched since the server falls back to all posts for
// slugs it does not know.
func ParseFilter(s string) Filter {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterAll
	}
	return Filter(s)
}

func (f Filter) String() string {
	return string(f)
}
