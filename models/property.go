package models

import "time"

// Property is a rental listing. Only the fields the scheduling subsystem and
// its plumbing need are modelled here.
type Property struct {
	ID         int       `bson:"id" json:"id"`
	LandlordID string    `bson:"landlord_id" json:"landlord_id"`
	Title      string    `bson:"title" json:"title"`
	Address    string    `bson:"address" json:"address"`
	RentAmount float64   `bson:"rent_amount" json:"rent_amount"`
	Published  bool      `bson:"published" json:"published"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}
