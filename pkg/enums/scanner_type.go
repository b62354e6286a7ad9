package enums

import "fmt"

// ScannerType identifies who scanned a batch QR code.
type ScannerType string

const (
	ScannerTypeBuyer     ScannerType = "buyer"
	ScannerTypeInspector ScannerType = "inspector"
	ScannerTypeExporter  ScannerType = "exporter"
	ScannerTypeCustoms   ScannerType = "customs"
)

var validScannerTypes = []ScannerType{
	ScannerTypeBuyer,
	ScannerTypeInspector,
	ScannerTypeExporter,
	ScannerTypeCustoms,
}

// String implements fmt.Stringer.
func (s ScannerType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ScannerType.
func (s ScannerType) IsValid() bool {
	for _, candidate := range validScannerTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseScannerType converts raw input into a ScannerType.
func ParseScannerType(value string) (ScannerType, error) {
	for _, candidate := range validScannerTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid scanner type %q", value)
}
