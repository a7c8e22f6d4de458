package models

import "time"

// Article is a blog post. Content is stored as plain text.
type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Cover     *string   `json:"cover"`
	Views     int64     `json:"views"`
	Likes     int64     `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile is the single "about me" record shown on the home page.
type Profile struct {
	ID       int64  `json:"id"`
	Avatar   string `json:"avatar"`
	Nickname string `json:"nickname"`
	Bio      string `json:"bio"`
	Email    string `json:"email"`
}
