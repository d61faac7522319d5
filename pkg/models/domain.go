package models

import "time"

// Recording describes a capture held in the recording database.
type Recording struct {
	ID        string    `json:"id"`      // UUID
	Name      string    `json:"name"`    // unique, human-chosen
	Device    string    `json:"device"`  // recorder that produced it, may be empty
	Samples   int       `json:"samples"` // number of stored samples
	CreatedAt time.Time `json:"created_at"`
}
