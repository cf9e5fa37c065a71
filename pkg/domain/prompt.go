package domain

import "time"

type Prompt struct {
	ID        int64     `json:"id"`
	Text      string    `json:"prompt"`
	CreatedAt time.Time `json:"createdAt"`
}
