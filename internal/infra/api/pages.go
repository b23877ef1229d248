package api

import (
	"bytes"
	"embed"
	"html/template"

	"club-bridge/internal/domain/model"
	"club-bridge/internal/infra/i18n"
	"club-bridge/internal/usecase"
)

//go:embed templates/*.html
var templatesFS embed.FS

var eventKeys = map[model.ActivityKind]string{
	model.ActivityPostComment: "daily_event_post_comment",
	model.ActivityReply:       "daily_event_reply",
	model.ActivityUpvotes:     "daily_event_upvotes",
}

// Page template names.
const (
	PageMessage = "message.html"
	PageDaily   = "daily.html"
	PageWeekly  = "weekly.html"
)

// Pages renders the embedded HTML templates with translated texts and site links.
type Pages struct {
	tmpl *template.Template
}

func NewPages(tr *i18n.Translator, links usecase.Links) *Pages {
	funcs := template.FuncMap{
		"t":          tr.T,
		"lang":       tr.Lang,
		"eventText":  func(k model.ActivityKind) string { return tr.T(eventKeys[k]) },
		"postURL":    func(p *model.Post) string { return links.Post(p.Type, p.Slug) },
		"postRefURL": func(p *model.PostRef) string { return links.Post(p.Type, p.Slug) },
		"commentURL": func(c *model.CommentWithPost) string { return links.Comment(c.PostSlug, c.ID) },
		"profileURL": links.Profile,
		"unsubscribeURL": func(u *model.User) string {
			return links.Unsubscribe(u.ID, u.SecretHash)
		},
		"switchDigestURL": func(t string, u *model.User) string {
			return links.SwitchDigest(model.DigestType(t), u.ID, u.SecretHash)
		},
	}
	return &Pages{tmpl: template.Must(template.New("pages").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"))}
}

// Execute renders into a buffer so a template error never leaves a half-written page.
func (p *Pages) Execute(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
