package emergency

import (
	"context"
	"testing"
)

func TestTriggerAssignsResponder(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	cases := []struct {
		typ       Type
		responder string
	}{
		{TypeAmbulance, "District Hospital"},
		{TypePolice, "Local Thana"},
		{TypeFire, "Fire Unit A"},
	}
	for _, tc := range cases {
		req, err := svc.Trigger(ctx, "u1", tc.typ, 26.9, 75.8)
		if err != nil {
			t.Fatalf("trigger %s: %v", tc.typ, err)
		}
		if req.ResponderName != tc.responder {
			t.Fatalf("expected responder %q got %q", tc.responder, req.ResponderName)
		}
		if req.Status != StatusPending {
			t.Fatalf("expected status %s got %s", StatusPending, req.Status)
		}
	}
}

func TestTriggerReplacesActiveRequest(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	first, err := svc.Trigger(ctx, "u1", TypePolice, 0, 0)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	second, err := svc.Trigger(ctx, "u1", TypeAmbulance, 0, 0)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}

	active, err := svc.Active(ctx, "u1")
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active.ID != second.ID || active.ID == first.ID {
		t.Fatalf("expected latest request to be active, got %s", active.ID)
	}
}

func TestTriggerRejectsUnknownType(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.Trigger(context.Background(), "u1", Type("flood"), 0, 0); err != ErrInvalidType {
		t.Fatalf("expected ErrInvalidType got %v", err)
	}
}

func TestResolveClearsActiveRequest(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	if _, err := svc.Trigger(ctx, "u1", TypeFire, 0, 0); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, "u1", StatusDispatched); err != nil {
		t.Fatalf("dispatched: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, "u1", StatusResolved); err != nil {
		t.Fatalf("resolved: %v", err)
	}
	if _, err := svc.Active(ctx, "u1"); err != ErrNoActiveRequest {
		t.Fatalf("expected ErrNoActiveRequest got %v", err)
	}
}

func TestCancelWithoutActiveRequest(t *testing.T) {
	svc := NewService(nil)
	if err := svc.Cancel(context.Background(), "u1"); err != ErrNoActiveRequest {
		t.Fatalf("expected ErrNoActiveRequest got %v", err)
	}
}
