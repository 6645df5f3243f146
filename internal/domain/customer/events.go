package customer

import "time"

const (
	EventCustomerRegistered      = "CustomerRegistered"
	EventCustomerPasswordChanged = "CustomerPasswordChanged"
	EventCustomerDeactivated     = "CustomerDeactivated"
)

type CustomerRegistered struct {
	CustomerID   string    `json:"customer_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	RegisteredAt time.Time `json:"registered_at"`
}

// CustomerPasswordChanged never carries the digest.
type CustomerPasswordChanged struct {
	CustomerID string    `json:"customer_id"`
	ChangedAt  time.Time `json:"changed_at"`
}

type CustomerDeactivated struct {
	CustomerID    string    `json:"customer_id"`
	DeactivatedAt time.Time `json:"deactivated_at"`
}
