package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/tinywideclouds/go-local-notifications/pkg/executor"
	"github.com/tinywideclouds/go-local-notifications/pkg/notification"
	"github.com/tinywideclouds/go-local-notifications/pkg/notifier"
	"github.com/urfave/cli/v3"
)

const (
	demoTitle = "Event Happened!"
	demoDelay = 5 * time.Second
)

type DemoCmd struct {
	app *App

	// flags
	after  time.Duration
	noWait bool
}

// NewDemoCmd creates a new demo command
func NewDemoCmd(app *App) *DemoCmd {
	return &DemoCmd{app: app}
}

// Register adds the demo command to the application
func (cmd *DemoCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "demo",
		Usage: "Request permission, reset the badge and schedule a test notification",
		Description: `Runs the three demo actions in order, with every result handled on a
single main queue:

  1. Request permission (only prompts if you have not answered yet)
  2. Reset the badge to 0
  3. Schedule "Event Happened!" five seconds from now`,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:        "after",
				Usage:       "delay before the notification fires",
				Value:       demoDelay,
				Destination: &cmd.after,
			},
			&cli.BoolFlag{
				Name:        "no-wait",
				Usage:       "exit once scheduled instead of waiting for delivery",
				Destination: &cmd.noWait,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *DemoCmd) run(ctx context.Context, c *cli.Command) error {
	out := cmd.app.Out
	queue := executor.NewMainQueue()
	async := notifier.NewAsync(cmd.app.Notifier, queue)

	var (
		result    error
		scheduled string
	)
	finish := func(err error) {
		result = err
		queue.Stop()
	}

	schedule := func() {
		body := fmt.Sprintf("Something important occurred at %s.", time.Now().Format(time.Kitchen))
		async.Schedule(ctx, demoTitle, body, func(id string, err error) {
			if err != nil {
				finish(err)
				return
			}
			scheduled = id
			printOK(out, "Scheduled %q (%s) in %s", demoTitle, id, notification.ClampDelay(cmd.after))
			finish(nil)
		}, notifier.After(cmd.after))
	}

	resetBadge := func() {
		async.ResetBadge(ctx, func(err error) {
			if err != nil {
				finish(err)
				return
			}
			printOK(out, "Badge reset")
			schedule()
		})
	}

	async.CheckAuthorizationStatus(ctx, func(status notification.AuthorizationStatus, err error) {
		if err != nil {
			finish(err)
			return
		}
		if status != notification.StatusNotDetermined {
			fmt.Fprintf(out, "Notification permission: %s\n", status)
			if status == notification.StatusAuthorized {
				resetBadge()
				return
			}
			printWarn(out, "Notifications are denied; nothing will be scheduled")
			finish(nil)
			return
		}
		async.RequestAuthorization(ctx, func(granted bool, err error) {
			if err != nil {
				finish(err)
				return
			}
			if !granted {
				printWarn(out, "Notification permission denied")
				finish(nil)
				return
			}
			printOK(out, "Notification permission granted")
			resetBadge()
		})
	})

	queue.Run(ctx)
	if result != nil || scheduled == "" || cmd.noWait {
		return result
	}

	fmt.Fprintln(out, mutedStyle.Render("Waiting for delivery..."))
	if err := waitFired(ctx, cmd.app.Notifier, scheduled, cmd.app.Clock, cmd.app.PollInterval); err != nil {
		return err
	}
	printOK(out, "Delivered %s", scheduled)
	return nil
}
