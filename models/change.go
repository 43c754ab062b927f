package models

// ChangeEvent says that stored data affecting a location's availability changed.
type ChangeEvent struct {
	Collection string `json:"collection"`
	LocationID string `json:"locationId,omitempty"` // empty when the change cannot be attributed
}
