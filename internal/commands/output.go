package commands

import (
	"context"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"
	"github.com/tinywideclouds/go-local-notifications/pkg/notification"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func printOK(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, okStyle.Render(fmt.Sprintf(format, args...)))
}

func printWarn(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf(format, args...)))
}

func printPending(w io.Writer, pending []notification.Pending) {
	if len(pending) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No pending notifications"))
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "IDENTIFIER\tTITLE\tFIRES AT")
	for _, p := range pending {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Request.Identifier, p.Request.Content.Title, p.FireAt.Local().Format(time.DateTime))
	}
	_ = tw.Flush()
}

func printDelivered(w io.Writer, delivered []notification.Delivered) {
	if len(delivered) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No delivered notifications"))
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "IDENTIFIER\tTITLE\tDELIVERED AT")
	for _, d := range delivered {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Request.Identifier, d.Request.Content.Title, d.DeliveredAt.Local().Format(time.DateTime))
	}
	_ = tw.Flush()
}

// pendingLister is the part of the notifier waitFired polls.
type pendingLister interface {
	Pending(ctx context.Context) ([]notification.Pending, error)
}

// waitFired blocks until identifier is no longer pending.
func waitFired(ctx context.Context, n pendingLister, identifier string, clk clockwork.Clock, interval time.Duration) error {
	ticker := clk.NewTicker(interval)
	defer ticker.Stop()
	for {
		pending, err := n.Pending(ctx)
		if err != nil {
			return fmt.Errorf("list pending: %w", err)
		}
		if !slices.ContainsFunc(pending, func(p notification.Pending) bool { return p.Request.Identifier == identifier }) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
		}
	}
}
