package domain

import "testing"

func TestOrderStatusValid(t *testing.T) {
	for _, status := range []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	} {
		if !status.Valid() {
			t.Errorf("expected %s to be valid", status)
		}
	}

	for _, status := range []OrderStatus{"", "unknown", "PENDING", "canceled"} {
		if status.Valid() {
			t.Errorf("expected %q to be invalid", status)
		}
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	allowed := map[OrderStatus][]OrderStatus{
		OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
		OrderStatusProcessing: {OrderStatusShipped},
		OrderStatusShipped:    {OrderStatusDelivered},
		OrderStatusDelivered:  {},
		OrderStatusCancelled:  {},
	}

	all := []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}

	for from, targets := range allowed {
		legal := map[OrderStatus]bool{}
		for _, to := range targets {
			legal[to] = true
		}
		for _, to := range all {
			if got := from.CanTransitionTo(to); got != legal[to] {
				t.Errorf("%s -> %s: expected %v, got %v", from, to, legal[to], got)
			}
		}
	}
}

func TestOrderIsGuest(t *testing.T) {
	order := &Order{}
	if !order.IsGuest() {
		t.Errorf("expected order without user to be a guest order")
	}

	user := User{}
	order.UserID = &user.ID
	if order.IsGuest() {
		t.Errorf("expected order with user to not be a guest order")
	}
}

func TestContactStatusTransitions(t *testing.T) {
	if !ContactStatusNew.CanTransitionTo(ContactStatusResolved) {
		t.Errorf("expected new -> resolved to be legal")
	}
	if ContactStatusResolved.CanTransitionTo(ContactStatusNew) {
		t.Errorf("expected resolved -> new to be illegal")
	}
	if ContactStatusNew.CanTransitionTo(ContactStatusNew) {
		t.Errorf("expected new -> new to be illegal")
	}
	if !ContactStatusNew.Valid() || !ContactStatusResolved.Valid() {
		t.Errorf("expected known contact statuses to be valid")
	}
	if ContactStatus("archived").Valid() {
		t.Errorf("expected unknown contact status to be invalid")
	}
}
