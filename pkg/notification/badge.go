package notification

import (
	"fmt"
	"strings"
)

type badgeMode int

const (
	badgeFixed badgeMode = iota
	badgeIncrement
	badgeNone
)

// BadgePolicy controls what a successful schedule does to the badge counter.
//
// The zero value sets the badge to 0; use BadgeSetFixed(1) for the historical
// behaviour of overwriting the badge with 1 on every schedule.
type BadgePolicy struct {
	mode  badgeMode
	value int
}

// BadgeSetFixed overwrites the badge with n.
func BadgeSetFixed(n int) BadgePolicy { return BadgePolicy{mode: badgeFixed, value: n} }

// BadgeIncrement reads the current badge and writes it back plus one.
// The read and the write are not atomic.
func BadgeIncrement() BadgePolicy { return BadgePolicy{mode: badgeIncrement} }

// BadgeNone leaves the badge alone.
func BadgeNone() BadgePolicy { return BadgePolicy{mode: badgeNone} }

// DefaultBadgePolicy is BadgeSetFixed(1).
func DefaultBadgePolicy() BadgePolicy { return BadgeSetFixed(1) }

// Next returns the badge value to write given the current one, and false when
// nothing should be written.
func (p BadgePolicy) Next(current int) (int, bool) {
	switch p.mode {
	case badgeIncrement:
		return current + 1, true
	case badgeNone:
		return 0, false
	default:
		return p.value, true
	}
}

// NeedsCurrent reports whether Next depends on the current badge value.
func (p BadgePolicy) NeedsCurrent() bool {
	return p.mode == badgeIncrement
}

func (p BadgePolicy) String() string {
	switch p.mode {
	case badgeIncrement:
		return "increment"
	case badgeNone:
		return "none"
	default:
		return fmt.Sprintf("fixed(%d)", p.value)
	}
}

// ParseBadgePolicy maps the config names increment, fixed and none to a policy.
// value is only used by fixed.
func ParseBadgePolicy(name string, value int) (BadgePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "fixed", "set_fixed", "setfixed":
		return BadgeSetFixed(value), nil
	case "increment":
		return BadgeIncrement(), nil
	case "none":
		return BadgeNone(), nil
	}
	return BadgePolicy{}, fmt.Errorf("unknown badge policy %q", name)
}
