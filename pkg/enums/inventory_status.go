package enums

import "fmt"

// BagInventoryStatus tracks the stocking state of a batch's bag inventory.
type BagInventoryStatus string

const (
	BagInventoryStatusAvailable BagInventoryStatus = "available"
	BagInventoryStatusLow       BagInventoryStatus = "low"
	BagInventoryStatusDepleted  BagInventoryStatus = "depleted"
)

var validBagInventoryStatuses = []BagInventoryStatus{
	BagInventoryStatusAvailable,
	BagInventoryStatusLow,
	BagInventoryStatusDepleted,
}

// String implements fmt.Stringer.
func (s BagInventoryStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BagInventoryStatus.
func (s BagInventoryStatus) IsValid() bool {
	for _, candidate := range validBagInventoryStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseBagInventoryStatus converts raw input into a BagInventoryStatus.
func ParseBagInventoryStatus(value string) (BagInventoryStatus, error) {
	for _, candidate := range validBagInventoryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bag inventory status %q", value)
}
