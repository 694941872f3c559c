package customer_test

import (
	"strings"
	"testing"

	"studio/internal/domain/customer"
)

// TestCustomerValidation tests validation of Customer.
func TestCustomerValidation(t *testing.T) {
	tests := []struct {
		name     string
		customer customer.Customer
		wantErr  bool
	}{
		{
			name:     "valid customer",
			customer: customer.Customer{ID: "1", Name: "Asha Rao", Email: "asha@example.com", MembershipStatus: customer.MembershipInactive},
			wantErr:  false,
		},
		{
			name:     "phone only",
			customer: customer.Customer{ID: "2", Name: "Ravi", Phone: "+91 98450 00000", MembershipStatus: customer.MembershipActive},
			wantErr:  false,
		},
		{
			name:     "empty name",
			customer: customer.Customer{ID: "3", Name: "  ", MembershipStatus: customer.MembershipActive},
			wantErr:  true,
		},
		{
			name:     "long name",
			customer: customer.Customer{ID: "4", Name: strings.Repeat("a", customer.MaxNameLength+1), MembershipStatus: customer.MembershipActive},
			wantErr:  true,
		},
		{
			name:     "invalid email",
			customer: customer.Customer{ID: "5", Name: "Meera", Email: "meera.example.com", MembershipStatus: customer.MembershipActive},
			wantErr:  true,
		},
		{
			name:     "unknown membership",
			customer: customer.Customer{ID: "6", Name: "Meera", MembershipStatus: "archived"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.customer.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Customer.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSyncMembership(t *testing.T) {
	c := customer.Customer{Name: "Asha", MembershipStatus: customer.MembershipInactive}

	if !c.SyncMembership(1) || !c.IsActive() {
		t.Fatal("one active subscription should activate membership")
	}
	if c.SyncMembership(2) {
		t.Error("already active: expected no change")
	}
	if !c.SyncMembership(0) || c.IsActive() {
		t.Error("zero active subscriptions should deactivate membership")
	}
}
