package enums

import "fmt"

// BatchStatus tags the lifecycle of a traceable batch. The traceability core
// only ever writes "generated"; later transitions belong to the external
// custody workflow.
type BatchStatus string

const (
	BatchStatusGenerated BatchStatus = "generated"
	BatchStatusInTransit BatchStatus = "in_transit"
	BatchStatusDelivered BatchStatus = "delivered"
)

var validBatchStatuses = []BatchStatus{
	BatchStatusGenerated,
	BatchStatusInTransit,
	BatchStatusDelivered,
}

// String implements fmt.Stringer.
func (s BatchStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BatchStatus.
func (s BatchStatus) IsValid() bool {
	for _, candidate := range validBatchStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseBatchStatus converts raw input into a BatchStatus.
func ParseBatchStatus(value string) (BatchStatus, error) {
	for _, candidate := range validBatchStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid batch status %q", value)
}
