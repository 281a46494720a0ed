package entity

import "time"

// Post belongs to exactly one author and owns its comments.
// Published is set at creation and never toggled.
type Post struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content,omitempty"`
	Published    bool      `json:"published"`
	AuthorID     string    `json:"author_id"`
	CreatedAt    time.Time `json:"created_at"`
	Author       *User     `json:"author,omitempty"`
	Comments     []Comment `json:"comments,omitempty"`
	CommentCount int       `json:"comment_count"`
}

// PostHit is a full-text search match on a post.
type PostHit struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	AuthorID  string    `json:"author_id"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	Score     float64   `json:"score"`
}
