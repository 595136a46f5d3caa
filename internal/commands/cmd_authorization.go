package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

type AuthorizationCmd struct {
	app *App
}

// NewAuthorizationCmd creates the status and authorize commands
func NewAuthorizationCmd(app *App) *AuthorizationCmd {
	return &AuthorizationCmd{app: app}
}

// Register adds the status and authorize commands to the application
func (cmd *AuthorizationCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:   "status",
			Usage:  "Show the notification authorization status",
			Action: cmd.status,
		},
		&cli.Command{
			Name:  "authorize",
			Usage: "Ask for permission to show alerts, play sounds and badge",
			Description: `Prompts only if permission has never been decided. Once you have
answered, the recorded decision is printed and no prompt is shown.`,
			Action: cmd.authorize,
		},
	)

	return app
}

func (cmd *AuthorizationCmd) status(ctx context.Context, c *cli.Command) error {
	status, err := cmd.app.Notifier.AuthorizationStatus(ctx)
	if err != nil {
		return fmt.Errorf("query status: %w", err)
	}
	fmt.Fprintln(cmd.app.Out, status)
	return nil
}

func (cmd *AuthorizationCmd) authorize(ctx context.Context, c *cli.Command) error {
	granted, err := cmd.app.Notifier.RequestAuthorization(ctx)
	if err != nil {
		return fmt.Errorf("request authorization: %w", err)
	}
	if granted {
		printOK(cmd.app.Out, "Notification permission granted")
	} else {
		printWarn(cmd.app.Out, "Notification permission denied")
	}
	return nil
}
