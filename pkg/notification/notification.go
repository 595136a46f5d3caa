// Package notification contains the domain models shared by the notifier facade,
// the platform notification center and its stores.
package notification

import (
	"time"
)

// MinimumDelay is the shortest delay a request may be scheduled with.
const MinimumDelay = time.Second

// AuthorizationOptions are the alert capabilities requested from the user.
type AuthorizationOptions struct {
	Alert bool `json:"alert"`
	Sound bool `json:"sound"`
	Badge bool `json:"badge"`
}

// DefaultAuthorizationOptions requests alerts, sounds and badges.
func DefaultAuthorizationOptions() AuthorizationOptions {
	return AuthorizationOptions{Alert: true, Sound: true, Badge: true}
}

// Settings is the center's view of what the user has allowed.
type Settings struct {
	AuthorizationStatus AuthorizationStatus  `json:"authorization_status"`
	Options             AuthorizationOptions `json:"options"`
}

// Content is what the user sees when a notification fires.
type Content struct {
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Sound    bool              `json:"sound"`
	UserInfo map[string]string `json:"user_info,omitempty"`
}

// Trigger decides when a request fires, relative to the moment it was added.
type Trigger struct {
	DeliverAfter time.Duration `json:"deliver_after"`
	Repeats      bool          `json:"repeats"`
}

// Request is a single local notification submitted to the center.
// Once submitted the center owns its lifecycle.
type Request struct {
	Identifier string  `json:"identifier"`
	Content    Content `json:"content"`
	Trigger    Trigger `json:"trigger"`
}

// Pending is a request the center has accepted but not yet fired.
type Pending struct {
	Request     Request   `json:"request"`
	ScheduledAt time.Time `json:"scheduled_at"`
	FireAt      time.Time `json:"fire_at"`
}

// Delivered is a request that has fired.
type Delivered struct {
	Request     Request   `json:"request"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// ClampDelay enforces MinimumDelay.
func ClampDelay(d time.Duration) time.Duration {
	if d < MinimumDelay {
		return MinimumDelay
	}
	return d
}
