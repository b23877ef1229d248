package model

import "time"

type DigestKind string

const (
	DigestKindDaily  DigestKind = "daily"
	DigestKindWeekly DigestKind = "weekly"
)

// Window is an inclusive [Start, End] time range.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

func (w Window) Duration() time.Duration { return w.End.Sub(w.Start) }

type ActivityKind string

const (
	ActivityPostComment ActivityKind = "post_comment"
	ActivityReply       ActivityKind = "reply"
	ActivityUpvotes     ActivityKind = "upvotes"
)

// PostRef is the small slice of a post needed to link to it.
type PostRef struct {
	Type  PostType
	Slug  string
	Title string
}

// Activity is one line of the "what happened to your stuff" feed.
// Post is nil for the upvotes total.
type Activity struct {
	Kind  ActivityKind
	Post  *PostRef
	Count int
}

// ActivityCount is a grouped row returned by the content store.
type ActivityCount struct {
	Post  PostRef
	Count int
}

// Horoscope is the decorative mood text shown in the daily digest.
type Horoscope struct {
	Phase     string    `json:"phase"`
	Text      string    `json:"text"`
	FetchedAt time.Time `json:"fetched_at"`
}
