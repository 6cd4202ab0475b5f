package models

import "strings"

type DeliveryMode int

const (
	AtLeastOnce DeliveryMode = iota
	AtMostOnce
	ExactlyOnce
)

var deliveryModeNames = map[DeliveryMode]string{
	AtMostOnce:  "at-most-once",
	AtLeastOnce: "at-least-once",
	ExactlyOnce: "exactly-once",
}

func (m DeliveryMode) String() string {
	if name, ok := deliveryModeNames[m]; ok {
		return name
	}
	return deliveryModeNames[AtLeastOnce]
}

// ParseDeliveryMode accepts kebab, snake and upper case spellings. Anything
// unrecognised falls back to AtLeastOnce.
func ParseDeliveryMode(s string) DeliveryMode {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for mode, name := range deliveryModeNames {
		if name == normalized {
			return mode
		}
	}
	return AtLeastOnce
}

func (m DeliveryMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *DeliveryMode) UnmarshalText(text []byte) error {
	*m = ParseDeliveryMode(string(text))
	return nil
}
