package enums

import "fmt"

// InventoryAction labels an inventory log entry.
type InventoryAction string

const (
	InventoryActionRestock    InventoryAction = "Restock"
	InventoryActionSale       InventoryAction = "Sale"
	InventoryActionAdjustment InventoryAction = "Adjustment"
)

var validInventoryActions = []InventoryAction{
	InventoryActionRestock,
	InventoryActionSale,
	InventoryActionAdjustment,
}

// String implements fmt.Stringer.
func (a InventoryAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known InventoryAction.
func (a InventoryAction) IsValid() bool {
	for _, candidate := range validInventoryActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseInventoryAction converts raw input into an InventoryAction.
func ParseInventoryAction(value string) (InventoryAction, error) {
	for _, candidate := range validInventoryActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inventory action %q", value)
}
