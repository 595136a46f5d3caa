// Package console renders notifications as bordered alerts on a terminal.
package console

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/tinywideclouds/go-local-notifications/pkg/dispatch"
	"github.com/tinywideclouds/go-local-notifications/pkg/notification"
)

var (
	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("212")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true)
	appStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Deliverer writes each notification to out. Safe for concurrent use.
type Deliverer struct {
	appName string

	mu  sync.Mutex
	out io.Writer
}

var _ dispatch.Deliverer = (*Deliverer)(nil)

func NewDeliverer(appName string, out io.Writer) *Deliverer {
	return &Deliverer{appName: appName, out: out}
}

func (d *Deliverer) Deliver(_ context.Context, req notification.Request) error {
	alert := alertStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		appStyle.Render(d.appName),
		titleStyle.Render(req.Content.Title),
		req.Content.Body,
	))
	if req.Content.Sound {
		alert = "\a" + alert
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := fmt.Fprintln(d.out, alert); err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}
	return nil
}
