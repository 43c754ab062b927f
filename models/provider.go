package models

import "time"

// Provider is a roster entry for someone who can be booked at a location.
type Provider struct {
	ID                     string    `bson:"id" json:"id"`
	LocationID             string    `bson:"locationId" json:"locationId"`
	DisplayName            string    `bson:"displayName" json:"displayName"`
	MaxSimultaneousClients *int      `bson:"maxSimultaneousClients,omitempty" json:"maxSimultaneousClients,omitempty"` // fallback capacity
	Active                 bool      `bson:"active" json:"active"`
	CreatedAt              time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time `bson:"updatedAt" json:"updatedAt"`
}
