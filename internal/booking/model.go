package booking

import "time"

// Booking statuses, in the labels the mobile client displays.
const (
	StatusPending    = "Pending"
	StatusAccepted   = "Accepted"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"
)

// Payment methods.
const (
	PayWallet = "wallet"
	PayCash   = "cash"
)

// Booking is a request for a village service (transport/medical/worker).
type Booking struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	ProviderID    string    `json:"provider_id"`
	ProviderName  string    `json:"provider_name"`
	Category      string    `json:"category"`
	Amount        int64     `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	Pickup        string    `json:"pickup,omitempty"`
	Drop          string    `json:"drop,omitempty"`
	Rating        int       `json:"rating,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
