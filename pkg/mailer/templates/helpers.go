package templates

import (
	"strings"
	"time"

	"github.com/oksasatya/go-ddd-postboard/config"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithPost(title string) Option { return func(d *EmailData) { d.PostTitle = title } }

// WithComment sets the commenter, preferring the name over the email.
func WithComment(authorName, authorEmail, content string) Option {
	return func(d *EmailData) {
		d.CommentAuthor = strings.TrimSpace(authorName)
		if d.CommentAuthor == "" {
			d.CommentAuthor = authorEmail
		}
		d.CommentContent = content
	}
}

// NewBaseEmailData fills the common fields from config, then applies the options
func NewBaseEmailData(cfg *config.Config, typ string, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,

		CompanyName:  cfg.CompanyName,
		AppName:      cfg.AppName,
		DashboardURL: cfg.DashboardURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(cfg *config.Config, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(cfg, Welcome, name, email, opts...))
}

func NewCommentData(cfg *config.Config, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(cfg, NewComment, name, email, opts...))
}
