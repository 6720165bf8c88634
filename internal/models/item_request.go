package models

import "time"

type ItemRequest struct {
	ID          int64         `json:"id" db:"id"`
	Description string        `json:"description" db:"description"`
	RequesterID int64         `json:"requesterId" db:"requester_id"`
	Created     time.Time     `json:"created" db:"created"`
	Items       []RequestItem `json:"items" db:"-"`
}

// RequestItem is an item listed in answer to a request.
type RequestItem struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	OwnerID   int64  `json:"ownerId" db:"owner_id"`
	RequestID int64  `json:"-" db:"request_id"`
}
