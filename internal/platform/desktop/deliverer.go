// Package desktop renders notifications through the freedesktop notification
// service, falling back to notify-send when the session bus is unreachable.
package desktop

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"

	"github.com/godbus/dbus/v5"
	"github.com/tinywideclouds/go-local-notifications/pkg/dispatch"
	"github.com/tinywideclouds/go-local-notifications/pkg/notification"
)

const (
	notificationServiceObj       = "/org/freedesktop/Notifications"
	notificationServiceInterface = "org.freedesktop.Notifications"
	notifyMethod                 = notificationServiceInterface + ".Notify"

	// soundName is a freedesktop sound theme name.
	soundName = "message-new-instant"
)

// notificationsObject is the part of dbus.BusObject we call.
type notificationsObject interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// busOpener connects to the session bus and returns the notifications object.
type busOpener func() (notificationsObject, io.Closer, error)

// commandRunner runs notify-send and returns its combined output.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Deliverer implements dispatch.Deliverer for Linux desktops.
type Deliverer struct {
	appName  string
	iconPath string
	logger   *slog.Logger

	openBus busOpener
	run     commandRunner
	lookup  func(file string) (string, error)
}

var _ dispatch.Deliverer = (*Deliverer)(nil)

func NewDeliverer(appName, iconPath string, logger *slog.Logger) *Deliverer {
	return &Deliverer{
		appName:  appName,
		iconPath: iconPath,
		logger:   logger.With("component", "DesktopDeliverer"),
		openBus:  openSessionBus,
		run:      runCommand,
		lookup:   exec.LookPath,
	}
}

func (d *Deliverer) Deliver(ctx context.Context, req notification.Request) error {
	id, err := d.deliverViaDbus(ctx, req)
	if err == nil {
		d.logger.Debug("Notification shown via dbus", "identifier", req.Identifier, "dbus_id", id)
		return nil
	}
	d.logger.Debug("dbus delivery failed, trying notify-send", "identifier", req.Identifier, "err", err)
	return d.deliverViaNotifySend(ctx, req)
}

// See: https://specifications.freedesktop.org/notification-spec/notification-spec-latest.html
func (d *Deliverer) deliverViaDbus(ctx context.Context, req notification.Request) (uint32, error) {
	obj, closer, err := d.openBus()
	if err != nil {
		return 0, fmt.Errorf("could not connect to dbus: %w", err)
	}
	defer closer.Close()

	hints := map[string]dbus.Variant{}
	if req.Content.Sound {
		hints["sound-name"] = dbus.MakeVariant(soundName)
	}

	call := obj.CallWithContext(ctx, notifyMethod,
		0,                 // no flags
		d.appName,         // app_name
		uint32(0),         // replaces_id
		d.iconPath,        // app_icon
		req.Content.Title, // summary
		req.Content.Body,  // body
		[]string{},        // actions
		hints,             // hints
		int32(-1))         // expire_timeout -- server default
	if call.Err != nil {
		return 0, fmt.Errorf("could not send notification via dbus: %w", call.Err)
	}

	var notificationID uint32
	if err := call.Store(&notificationID); err != nil {
		d.logger.Warn("could not get notification ID from dbus call", "err", err)
	}
	return notificationID, nil
}

func (d *Deliverer) deliverViaNotifySend(ctx context.Context, req notification.Request) error {
	notifySend, err := d.lookup("notify-send")
	if err != nil {
		return fmt.Errorf("notify-send not installed: %w", err)
	}

	args := []string{"--app-name", d.appName}
	if d.iconPath != "" {
		args = append(args, "-i", d.iconPath)
	}
	// "--" keeps a title or body starting with "-" from being read as an option.
	args = append(args, "--", req.Content.Title, req.Content.Body)

	if out, err := d.run(ctx, notifySend, args...); err != nil {
		return fmt.Errorf("could not send notification via notify-send: %s: %w", string(out), err)
	}
	return nil
}

func openSessionBus() (notificationsObject, io.Closer, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, nil, err
	}
	return conn.Object(notificationServiceInterface, notificationServiceObj), conn, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
