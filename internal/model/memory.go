// Package model defines the core memory data types.
package model

import "time"

// Memory represents a single stored utterance on the board.
//
// IDs are assigned by the store, increase monotonically and are never
// reused, even after the record is evicted. Thumbnail is a base64 JPEG
// derived at creation time, present only when the text was a reachable,
// whitelisted image URI. CreatedAt is always UTC, so the serialized
// timestamp carries the ISO-8601 "Z" designator.
type Memory struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"timestamp"`
	Thumbnail *string   `json:"thumbnail"`
}
