package domain

import "fmt"

// Side selects which half of a loader descriptor a profile is built for.
type Side string

const (
	SideClient Side = "client"
	SideServer Side = "server"
)

// ParseSide accepts "client" or "server".
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideClient, SideServer:
		return Side(s), nil
	default:
		return "", fmt.Errorf("unknown side %q, expected client or server", s)
	}
}
