package wallet

import (
	"context"

	"github.com/google/uuid"
)

// Connector represents a connector to an external UPI payment processor.
type Connector interface {
	AuthorizeCollect(ctx context.Context, input CollectAuthorization) (AuthorizationDecision, error)
}

// CollectAuthorization encapsulates details for a UPI collect (top-up) request.
type CollectAuthorization struct {
	VPA    string
	Amount int64
}

// AuthorizationDecision captures the simulated response from the processor.
type AuthorizationDecision struct {
	Reference string
	Status    string
}

// StaticConnector simulates a successful UPI integration.
type StaticConnector struct{}

// AuthorizeCollect approves the top-up request with a synthetic reference.
func (StaticConnector) AuthorizeCollect(_ context.Context, _ CollectAuthorization) (AuthorizationDecision, error) {
	return AuthorizationDecision{Reference: uuid.NewString(), Status: "approved"}, nil
}
