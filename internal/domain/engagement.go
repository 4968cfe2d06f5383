package domain

import "fmt"

// EngagementKind names an engagement action on a quote.
type EngagementKind string

const (
	EngagementLike     EngagementKind = "like"
	EngagementBookmark EngagementKind = "bookmark"
	EngagementShare    EngagementKind = "share"
)

// EngagementState is one session's toggle state for one quote.
// The zero value is the initial state: neither liked nor bookmarked.
type EngagementState struct {
	Liked      bool
	Bookmarked bool
}

// EngagementFunc transitions a quote and a session's state for it.
// Stores apply it atomically per quote.
type EngagementFunc func(state EngagementState, q Quote) (EngagementState, Quote)

// ToggleLike flips Liked and moves the like counter with it.
func ToggleLike(state EngagementState, q Quote) (EngagementState, Quote) {
	state.Liked = !state.Liked
	q.Likes = step(q.Likes, state.Liked)

	return state, q
}

// ToggleBookmark flips Bookmarked and moves the bookmark counter with it.
func ToggleBookmark(state EngagementState, q Quote) (EngagementState, Quote) {
	state.Bookmarked = !state.Bookmarked
	q.Bookmarks = step(q.Bookmarks, state.Bookmarked)

	return state, q
}

// RecordShare counts a share. Shares are not a toggle; every call counts.
func RecordShare(state EngagementState, q Quote) (EngagementState, Quote) {
	q.Shares++
	return state, q
}

// TransitionFor returns the transition for kind, or false if kind is unknown.
func TransitionFor(kind EngagementKind) (EngagementFunc, bool) {
	switch kind {
	case EngagementLike:
		return ToggleLike, true
	case EngagementBookmark:
		return ToggleBookmark, true
	case EngagementShare:
		return RecordShare, true
	default:
		return nil, false
	}
}

// ShareText is the payload handed to a share sheet or clipboard.
func ShareText(v QuoteView) string {
	if v.AuthorName == "" {
		return fmt.Sprintf("\"%s\"", v.Text)
	}

	return fmt.Sprintf("\"%s\" - %s", v.Text, v.AuthorName)
}

// step adds one when on, removes one when off, and never goes below zero.
func step(n int64, on bool) int64 {
	if on {
		return n + 1
	}

	if n <= 0 {
		return 0
	}

	return n - 1
}
