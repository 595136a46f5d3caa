package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

type ManageCmd struct {
	app *App
}

// NewManageCmd creates the cancel, list and badge commands
func NewManageCmd(app *App) *ManageCmd {
	return &ManageCmd{app: app}
}

// Register adds the cancel, list and badge commands to the application
func (cmd *ManageCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "cancel",
			Usage:     "Cancel a pending notification",
			UsageText: "notifyctl cancel <id>",
			Action:    cmd.cancel,
		},
		&cli.Command{
			Name:   "cancel-all",
			Usage:  "Cancel every pending notification",
			Action: cmd.cancelAll,
		},
		&cli.Command{
			Name:   "reset-badge",
			Usage:  "Set the badge count to 0",
			Action: cmd.resetBadge,
		},
		&cli.Command{
			Name:   "badge",
			Usage:  "Print the badge count",
			Action: cmd.badge,
		},
		&cli.Command{
			Name:   "pending",
			Usage:  "List pending notifications",
			Action: cmd.pending,
		},
		&cli.Command{
			Name:  "delivered",
			Usage: "List delivered notifications",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "clear", Usage: "remove them after listing"},
			},
			Action: cmd.delivered,
		},
	)

	return app
}

func (cmd *ManageCmd) cancel(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("identifier required")
	}
	if err := cmd.app.Notifier.CancelPending(ctx, id); err != nil {
		return err
	}
	printOK(cmd.app.Out, "Cancelled %s", id)
	return nil
}

func (cmd *ManageCmd) cancelAll(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Notifier.CancelAllPending(ctx); err != nil {
		return err
	}
	printOK(cmd.app.Out, "Cancelled all pending notifications")
	return nil
}

func (cmd *ManageCmd) resetBadge(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Notifier.ResetBadge(ctx); err != nil {
		return err
	}
	printOK(cmd.app.Out, "Badge reset")
	return nil
}

func (cmd *ManageCmd) badge(ctx context.Context, c *cli.Command) error {
	n, err := cmd.app.Notifier.BadgeCount(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.app.Out, n)
	return nil
}

func (cmd *ManageCmd) pending(ctx context.Context, c *cli.Command) error {
	pending, err := cmd.app.Notifier.Pending(ctx)
	if err != nil {
		return fmt.Errorf("list pending: %w", err)
	}
	printPending(cmd.app.Out, pending)
	return nil
}

func (cmd *ManageCmd) delivered(ctx context.Context, c *cli.Command) error {
	delivered, err := cmd.app.Notifier.Delivered(ctx)
	if err != nil {
		return fmt.Errorf("list delivered: %w", err)
	}
	printDelivered(cmd.app.Out, delivered)
	if c.Bool("clear") {
		return cmd.app.Notifier.RemoveAllDelivered(ctx)
	}
	return nil
}
