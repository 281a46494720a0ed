package entity

import (
	"time"
)

// User is the aggregate root for the dashboard.
// Posts and Comments are only populated by the read operations that ask for them.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	Posts     []Post     `json:"posts,omitempty"`
	Comments  []Comment  `json:"comments,omitempty"`
	Counts    UserCounts `json:"counts"`
}

// UserCounts holds the aggregate counts shown next to a user
type UserCounts struct {
	Posts    int `json:"posts"`
	Comments int `json:"comments"`
}
