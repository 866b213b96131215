package domain

import (
	"regexp"
	"testing"
	"time"
)

func TestOrderStatus_IsValid(t *testing.T) {
	valid := []OrderStatus{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
	}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("%q should be valid", s)
		}
	}

	for _, s := range []OrderStatus{"", "unknown", "PENDING", "returned"} {
		if s.IsValid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestPaymentStatus_IsValid(t *testing.T) {
	valid := []PaymentStatus{
		PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded,
	}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("%q should be valid", s)
		}
	}

	if PaymentStatus("succeeded").IsValid() {
		t.Error("\"succeeded\" is a payment state, not an order payment status")
	}
}

func TestOrder_CanCancel(t *testing.T) {
	tests := []struct {
		status   OrderStatus
		expected bool
	}{
		{OrderStatusPending, true},
		{OrderStatusConfirmed, true},
		{OrderStatusProcessing, false},
		{OrderStatusShipped, false},
		{OrderStatusDelivered, false},
		{OrderStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			o := &Order{Status: tt.status}
			if got := o.CanCancel(); got != tt.expected {
				t.Errorf("CanCancel() with status %q = %v, want %v", tt.status, got, tt.expected)
			}
		})
	}
}

func TestGenerateOrderNumber(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 15, 0, time.UTC)

	n := GenerateOrderNumber(now)

	pattern := regexp.MustCompile(`^ORD-20250314093015-[0-9A-F]{8}$`)
	if !pattern.MatchString(n) {
		t.Errorf("order number %q does not match expected format", n)
	}
}

func TestGenerateOrderNumber_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		n := GenerateOrderNumber(now)
		if seen[n] {
			t.Fatalf("duplicate order number generated: %s", n)
		}
		seen[n] = true
	}
}
