package model

import (
	"strings"
	"time"
)

type PostType string

const (
	PostTypePost         PostType = "post"
	PostTypeIntro        PostType = "intro"
	PostTypeLink         PostType = "link"
	PostTypeQuestion     PostType = "question"
	PostTypeIdea         PostType = "idea"
	PostTypeProject      PostType = "project"
	PostTypeEvent        PostType = "event"
	PostTypeWeeklyDigest PostType = "weekly_digest"
)

// LabelTopWeek marks the editor's pick of the week.
const LabelTopWeek = "top_week"

// Post is a piece of club content. Upvotes is derived from votes by the content store.
type Post struct {
	ID                    string
	Slug                  string
	Type                  PostType
	Title                 string
	Text                  string
	URL                   string
	AuthorID              string
	LabelCode             string
	Upvotes               int
	CommentCount          int
	IsVisible             bool
	IsApprovedByModerator bool
	PublishedAt           time.Time
	CreatedAt             time.Time
}

func (p *Post) IsVideo() bool { return ContainsVideoLink(p.URL) }

var videoMarkers = []string{"https://youtu.be/", "youtube.com/watch"}

// ContainsVideoLink reports whether s mentions one of the recognised video hosts.
func ContainsVideoLink(s string) bool {
	for _, m := range videoMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// VideoMarkers returns the substrings that identify a video link.
func VideoMarkers() []string {
	out := make([]string, len(videoMarkers))
	copy(out, videoMarkers)
	return out
}
