package models

import "time"

// ViewingRequestStatus is the lifecycle state of a viewing request.
type ViewingRequestStatus string

const (
	ViewingStatusPending  ViewingRequestStatus = "pending"
	ViewingStatusApproved ViewingRequestStatus = "approved"
	ViewingStatusDeclined ViewingRequestStatus = "declined"
	ViewingStatusProposed ViewingRequestStatus = "proposed"
	ViewingStatusClosed   ViewingRequestStatus = "closed"
)

// IsActive reports whether a request in this status is eligible for
// reschedule/cancel disambiguation.
func (s ViewingRequestStatus) IsActive() bool {
	return s == ViewingStatusPending || s == ViewingStatusApproved
}

// ViewingRequest represents a tenant's booking for a property viewing
// with a single landlord.
type ViewingRequest struct {
	ID                int                  `bson:"id" json:"id"`                             // Store-assigned integer identifier
	PropertyID        int                  `bson:"property_id" json:"property_id"`           // Property being viewed
	TenantID          string               `bson:"tenant_id" json:"tenant_id"`               // Requesting tenant
	LandlordID        string               `bson:"landlord_id" json:"landlord_id"`           // Landlord who owns the calendar
	RequestedDateTime time.Time            `bson:"requested_date_time" json:"requested_date_time"`
	ProposedDateTime  *time.Time           `bson:"proposed_date_time,omitempty" json:"proposed_date_time,omitempty"` // Set only while status is proposed
	Status            ViewingRequestStatus `bson:"status" json:"status"`
	CreatedAt         time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time            `bson:"updated_at" json:"updated_at"`
}
