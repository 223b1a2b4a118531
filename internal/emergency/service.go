package emergency

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gram-seva/gram_seva/internal/notification"
)

// Type identifies the kind of emergency being reported.
type Type string

const (
	TypeAmbulance Type = "ambulance"
	TypePolice    Type = "police"
	TypeFire      Type = "fire"
)

// Status tracks a request from the moment it is raised until resolution.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusDispatched Status = "Dispatched"
	StatusArriving   Status = "Arriving"
	StatusResolved   Status = "Resolved"
)

var (
	ErrNoActiveRequest = errors.New("no active emergency request")
	ErrInvalidType     = errors.New("invalid emergency type")
	ErrInvalidStatus   = errors.New("invalid emergency status")
)

// Request is a single SOS call. A user has at most one active request;
// raising a new one replaces whatever was outstanding.
type Request struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Type          Type      `json:"type"`
	Status        Status    `json:"status"`
	Lat           float64   `json:"lat"`
	Lng           float64   `json:"lng"`
	ResponderName string    `json:"responder_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// Service keeps active requests in memory. Requests are ephemeral by
// nature, they never outlive the dispatch they describe.
type Service struct {
	mu       sync.Mutex
	active   map[string]*Request
	notifier notification.Notifier
}

func NewService(notifier notification.Notifier) *Service {
	return &Service{
		active:   make(map[string]*Request),
		notifier: notifier,
	}
}

func responderFor(t Type) string {
	switch t {
	case TypeAmbulance:
		return "District Hospital"
	case TypePolice:
		return "Local Thana"
	default:
		return "Fire Unit A"
	}
}

// Trigger raises an SOS for the user, replacing any outstanding request.
func (s *Service) Trigger(ctx context.Context, userID string, t Type, lat, lng float64) (Request, error) {
	switch t {
	case TypeAmbulance, TypePolice, TypeFire:
	default:
		return Request{}, ErrInvalidType
	}

	req := &Request{
		ID:            uuid.NewString(),
		UserID:        userID,
		Type:          t,
		Status:        StatusPending,
		Lat:           lat,
		Lng:           lng,
		ResponderName: responderFor(t),
		CreatedAt:     time.Now().UTC(),
	}

	s.mu.Lock()
	s.active[userID] = req
	s.mu.Unlock()

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindEmergencyDispatch,
			Destination: userID,
			Body:        fmt.Sprintf("%s has been alerted to your %s emergency", req.ResponderName, t),
		})
	}

	return *req, nil
}

// Active returns the user's outstanding request, if any.
func (s *Service) Active(_ context.Context, userID string) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.active[userID]
	if !ok {
		return Request{}, ErrNoActiveRequest
	}
	return *req, nil
}

// UpdateStatus advances the active request. Resolving it clears the slot.
func (s *Service) UpdateStatus(_ context.Context, userID string, status Status) (Request, error) {
	switch status {
	case StatusPending, StatusDispatched, StatusArriving, StatusResolved:
	default:
		return Request{}, ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.active[userID]
	if !ok {
		return Request{}, ErrNoActiveRequest
	}

	req.Status = status
	out := *req
	if status == StatusResolved {
		delete(s.active, userID)
	}
	return out, nil
}

// Cancel withdraws the user's active request.
func (s *Service) Cancel(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.active[userID]; !ok {
		return ErrNoActiveRequest
	}
	delete(s.active, userID)
	return nil
}
