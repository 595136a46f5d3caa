// Package prompt provides the ways the center can ask the user for
// notification permission.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/tinywideclouds/go-local-notifications/pkg/dispatch"
	"github.com/tinywideclouds/go-local-notifications/pkg/notification"
)

// ErrDismissed is returned when the user closes the prompt without answering.
var ErrDismissed = errors.New("authorization prompt dismissed")

// Static answers every prompt the same way. Used by headless services.
type Static bool

var _ dispatch.Prompter = Static(false)

func (s Static) Prompt(_ context.Context, _ notification.AuthorizationOptions) (bool, error) {
	return bool(s), nil
}

// Terminal asks on the controlling terminal.
type Terminal struct {
	AppName string
}

var _ dispatch.Prompter = (*Terminal)(nil)

func (t *Terminal) Prompt(ctx context.Context, opts notification.AuthorizationOptions) (bool, error) {
	var allow bool
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("%q would like to send you notifications", t.AppName)).
			Description(Describe(opts)).
			Affirmative("Allow").
			Negative("Don't Allow").
			Value(&allow),
	)).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return false, ErrDismissed
	}
	if err != nil {
		return false, err
	}
	return allow, nil
}

// Describe lists the requested capabilities in prompt wording.
func Describe(opts notification.AuthorizationOptions) string {
	var parts []string
	if opts.Alert {
		parts = append(parts, "alerts")
	}
	if opts.Sound {
		parts = append(parts, "sounds")
	}
	if opts.Badge {
		parts = append(parts, "icon badges")
	}
	if len(parts) == 0 {
		return "Notifications may include no alerts."
	}
	return "Notifications may include " + strings.Join(parts, ", ") + "."
}

// FromName maps a config value to a Prompter.
func FromName(name, appName string) (dispatch.Prompter, error) {
	switch strings.ToLower(name) {
	case "allow":
		return Static(true), nil
	case "deny":
		return Static(false), nil
	case "terminal", "":
		return &Terminal{AppName: appName}, nil
	default:
		return nil, fmt.Errorf("unknown authorization prompt %q (want allow, deny or terminal)", name)
	}
}
