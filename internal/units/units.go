// Package units provides shared constants and conversion for distance units
package units

// Unit constants
const (
	MM = "mm"
	CM = "cm"
	M  = "m"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{MM, CM, M}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "mm, cm, m"
}

// ConvertDistance converts a distance from millimetres to the target units
// Frames carry distances in mm (millimetres)
func ConvertDistance(distMM float64, targetUnits string) float64 {
	switch targetUnits {
	case CM:
		return distMM / 10
	case M:
		return distMM / 1000
	case MM:
		return distMM // no conversion needed
	default:
		return distMM // default to mm if unknown unit
	}
}
