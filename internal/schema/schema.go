package schema

import (
	"fmt"
	"strings"
)

// Role is the semantic purpose assigned to a dataset column.
type Role string

const (
	RoleTimestamp Role = "timestamp"
	RoleProduct   Role = "product"
	RoleQuantity  Role = "quantity"
	RoleLocation  Role = "location"
)

// roleRule binds a role to the keywords that identify it in a column name.
type roleRule struct {
	Role     Role
	Keywords []string
	Required bool
}

// rules is the declarative inference table. Teaching the inferencer a new
// role only requires a new entry here; matching order follows the table.
var rules = []roleRule{
	{RoleTimestamp, []string{"time", "date"}, true},
	{RoleProduct, []string{"product", "item", "sku"}, true},
	{RoleQuantity, []string{"quantity", "amount", "qty"}, true},
	{RoleLocation, []string{"location"}, false},
}

// ColumnRoles is the resolved column mapping for one dataset.
type ColumnRoles struct {
	Timestamp string `json:"timestamp"`
	Product   string `json:"product"`
	Quantity  string `json:"quantity"`
	Location  string `json:"location,omitempty"` // empty when the dataset has no location column
}

// MissingRoleError reports a required role that no column name matched.
type MissingRoleError struct {
	Role Role
}

func (e *MissingRoleError) Error() string {
	return fmt.Sprintf("schema: no column matches required role %q", e.Role)
}

// Infer assigns roles to columns by case-insensitive substring matching
// against the rule table. The first matching column in dataset order wins
// per role. Timestamp, product and quantity are required; location is not.
func Infer(columns []string) (ColumnRoles, error) {
	resolved := make(map[Role]string, len(rules))

	for _, rule := range rules {
		for _, col := range columns {
			if matchesAny(strings.ToLower(col), rule.Keywords) {
				resolved[rule.Role] = col
				break
			}
		}
	}

	for _, rule := range rules {
		if rule.Required && resolved[rule.Role] == "" {
			return ColumnRoles{}, &MissingRoleError{Role: rule.Role}
		}
	}

	return ColumnRoles{
		Timestamp: resolved[RoleTimestamp],
		Product:   resolved[RoleProduct],
		Quantity:  resolved[RoleQuantity],
		Location:  resolved[RoleLocation],
	}, nil
}

func matchesAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
