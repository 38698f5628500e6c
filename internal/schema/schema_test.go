package schema

import (
	"errors"
	"testing"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    ColumnRoles
	}{
		{
			"CanonicalNames",
			[]string{"Date", "Product", "Quantity", "Location"},
			ColumnRoles{Timestamp: "Date", Product: "Product", Quantity: "Quantity", Location: "Location"},
		},
		{
			"SynonymsAndCase",
			[]string{"order_time", "SKU", "Amount Shipped"},
			ColumnRoles{Timestamp: "order_time", Product: "SKU", Quantity: "Amount Shipped"},
		},
		{
			"FirstColumnWinsPerRole",
			[]string{"ship_date", "delivery_date", "item_id", "product_name", "qty", "quantity"},
			ColumnRoles{Timestamp: "ship_date", Product: "item_id", Quantity: "qty"},
		},
		{
			"LocationIsOptional",
			[]string{"timestamp", "product", "qty"},
			ColumnRoles{Timestamp: "timestamp", Product: "product", Quantity: "qty"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Infer(tt.columns)
			if err != nil {
				t.Fatalf("Infer() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Infer() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInfer_MissingRoles(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		missing Role
	}{
		{"NoTimestamp", []string{"product", "quantity", "location"}, RoleTimestamp},
		{"NoProduct", []string{"date", "quantity"}, RoleProduct},
		{"NoQuantity", []string{"date", "product"}, RoleQuantity},
		{"NoColumnsAtAll", nil, RoleTimestamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Infer(tt.columns)
			var missErr *MissingRoleError
			if !errors.As(err, &missErr) {
				t.Fatalf("Infer() error = %v, want MissingRoleError", err)
			}
			if missErr.Role != tt.missing {
				t.Errorf("missing role = %q, want %q", missErr.Role, tt.missing)
			}
		})
	}
}
