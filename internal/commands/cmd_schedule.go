package commands

import (
	"context"
	"fmt"

	"github.com/tinywideclouds/go-local-notifications/pkg/notifier"
	"github.com/urfave/cli/v3"
)

type ScheduleCmd struct {
	app *App

	// flags
	title      string
	body       string
	identifier string
	wait       bool
}

// NewScheduleCmd creates a new schedule command
func NewScheduleCmd(app *App) *ScheduleCmd {
	return &ScheduleCmd{app: app}
}

// Register adds the schedule command to the application
func (cmd *ScheduleCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "schedule",
		Usage:     "Schedule a one-shot local notification",
		UsageText: "notifyctl schedule --title TITLE [--body BODY] [--after 5s] [--id ID] [--wait]",
		Description: `Schedules a notification if permission has been granted. Delays under one
second are raised to one second. The notification fires while a notifyctl
process is running: use --wait, or leave 'notifyctl watch' running.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Usage:       "notification title",
				Required:    true,
				Destination: &cmd.title,
			},
			&cli.StringFlag{
				Name:        "body",
				Usage:       "notification body",
				Destination: &cmd.body,
			},
			&cli.DurationFlag{
				Name:  "after",
				Usage: "delay before the notification fires",
				Value: notifier.DefaultDelay,
			},
			&cli.StringFlag{
				Name:        "id",
				Usage:       "identifier (a UUID is generated when empty); an existing pending id is replaced",
				Destination: &cmd.identifier,
			},
			&cli.BoolFlag{
				Name:        "wait",
				Usage:       "wait until the notification has fired",
				Destination: &cmd.wait,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ScheduleCmd) run(ctx context.Context, c *cli.Command) error {
	opts := []notifier.ScheduleOption{notifier.After(c.Duration("after"))}
	if cmd.identifier != "" {
		opts = append(opts, notifier.WithIdentifier(cmd.identifier))
	}

	id, err := cmd.app.Notifier.Schedule(ctx, cmd.title, cmd.body, opts...)
	if err != nil {
		if notifier.IsNotAuthorized(err) {
			return fmt.Errorf("%w; run 'notifyctl authorize' first", err)
		}
		return err
	}
	fmt.Fprintln(cmd.app.Out, id)

	if !cmd.wait {
		return nil
	}
	if err := waitFired(ctx, cmd.app.Notifier, id, cmd.app.Clock, cmd.app.PollInterval); err != nil {
		return err
	}
	printOK(cmd.app.Out, "Delivered %s", id)
	return nil
}
