package models

import "time"

// VoteState is the last server-confirmed helpful-vote state of a review
// for the current viewer. Count and Marked are independently sourced from
// the backend, but an optimistic toggle always changes them together.
type VoteState struct {
	Count  int
	Marked bool
}

type Reply struct {
	Id        string `json:"id"`
	Content   string `json:"content"`
	AuthorId  string `json:"authorId"`
	CreatedAt int64  `json:"createdAt"`
}

// ReviewPreview is the most-recent-review snippet shown on business rows.
// HasRating distinguishes an unrated review from a zero rating.
type ReviewPreview struct {
	Content   string
	Rating    float64
	HasRating bool
	CreatedAt string
}

type Session struct {
	Token     string
	UserId    string
	ExpiresAt time.Time
}
