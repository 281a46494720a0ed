package entity

import "time"

type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	Author    *User     `json:"author,omitempty"`
	Post      *Post     `json:"post,omitempty"`
}
