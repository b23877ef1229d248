package usecase

import (
	"fmt"
	"strings"

	"club-bridge/internal/domain/model"
)

// Links builds absolute site URLs.
type Links struct {
	Host string
}

func NewLinks(host string) Links { return Links{Host: strings.TrimRight(host, "/")} }

func (l Links) Post(t model.PostType, slug string) string {
	return fmt.Sprintf("%s/%s/%s/", l.Host, t, slug)
}

func (l Links) Comment(postSlug, commentID string) string {
	return fmt.Sprintf("%s/post/%s/comment/%s/", l.Host, postSlug, commentID)
}

func (l Links) Profile(userSlug string) string {
	return fmt.Sprintf("%s/user/%s/", l.Host, userSlug)
}

func (l Links) Unsubscribe(userID, secret string) string {
	return fmt.Sprintf("%s/email/unsubscribe/%s/%s/", l.Host, userID, secret)
}

func (l Links) SwitchDigest(t model.DigestType, userID, secret string) string {
	return fmt.Sprintf("%s/email/digest/%s/%s/%s/", l.Host, t, userID, secret)
}
