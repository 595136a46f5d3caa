package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

type WatchCmd struct {
	app *App
}

// NewWatchCmd creates a new watch command
func NewWatchCmd(app *App) *WatchCmd {
	return &WatchCmd{app: app}
}

// Register adds the watch command to the application
func (cmd *WatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "watch",
		Usage: "Keep the notification center running until interrupted",
		Description: `Delivers pending notifications as they come due. Anything that fell due
while no notifyctl process was running is delivered immediately, and
notifications scheduled or cancelled by other notifyctl processes are
picked up while watching.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *WatchCmd) run(ctx context.Context, c *cli.Command) error {
	pending, err := cmd.app.Notifier.Pending(ctx)
	if err != nil {
		return fmt.Errorf("list pending: %w", err)
	}
	fmt.Fprintln(cmd.app.Out, mutedStyle.Render(fmt.Sprintf("Watching %d pending notification(s); Ctrl-C to stop", len(pending))))
	cmd.app.Center.Watch(ctx, cmd.app.PollInterval)
	return nil
}
