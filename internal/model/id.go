package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// NewID generates a new ULID string. IDs made within the same millisecond
// still sort in creation order.
func NewID() string {
	return ulid.Make().String()
}

// ParseID validates id and returns the time encoded in it.
func ParseID(id string) (time.Time, error) {
	u, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
