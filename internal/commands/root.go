package commands

import (
	"context"
	"io"

	"github.com/urfave/cli/v3"
)

// NewRoot builds the notifyctl command tree. app is filled in by the Before
// hook and closed by the After hook.
func NewRoot(flags *Flags, app *App, out io.Writer) *cli.Command {
	root := &cli.Command{
		Name:      "notifyctl",
		Usage:     "Schedule and manage local desktop notifications",
		UsageText: "notifyctl [global options] command [command options]",
		Writer:    out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("LOG_LEVEL"),
				Value:       "warn",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("NOTIFYCTL_CONFIG"),
				Value:       DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, app.Open(ctx, flags, out)
		},
		After: func(ctx context.Context, c *cli.Command) error {
			return app.Close()
		},
	}

	NewDemoCmd(app).Register(root)
	NewAuthorizationCmd(app).Register(root)
	NewScheduleCmd(app).Register(root)
	NewManageCmd(app).Register(root)
	NewWatchCmd(app).Register(root)

	return root
}
