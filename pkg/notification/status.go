package notification

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AuthorizationStatus is the user's decision about notifications.
type AuthorizationStatus int

const (
	StatusNotDetermined AuthorizationStatus = iota
	StatusDenied
	StatusAuthorized
)

func (s AuthorizationStatus) String() string {
	switch s {
	case StatusDenied:
		return "denied"
	case StatusAuthorized:
		return "authorized"
	default:
		return "notDetermined"
	}
}

// ParseAuthorizationStatus accepts the String form, case-insensitively.
func ParseAuthorizationStatus(s string) (AuthorizationStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "notdetermined", "not_determined", "":
		return StatusNotDetermined, nil
	case "denied":
		return StatusDenied, nil
	case "authorized":
		return StatusAuthorized, nil
	}
	return StatusNotDetermined, fmt.Errorf("unknown authorization status %q", s)
}

func (s AuthorizationStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *AuthorizationStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseAuthorizationStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
