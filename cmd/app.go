package cmd

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3mood/internal/dapp"
	"github.com/Mohsinsiddi/w3mood/internal/provider"
	"github.com/Mohsinsiddi/w3mood/internal/ui"
)

var appCmd = &cobra.Command{
	Use:   "app",
	Short: "Open the interactive mood page",
	Long: `Connect the wallet and open a page with a mood field.

Keyboard controls:
  enter      set the typed mood
  ctrl+r     get the current mood
  esc        quit

Reads and writes may overlap; each reports on its own line.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		display := &ui.PageDisplay{}
		actions := &pageActions{ctrl: dapp.NewController(display, log)}
		defer actions.close()

		prog := tea.NewProgram(ui.NewMoodPage(ctx, actions, ui.Banner(Version)))
		display.Attach(prog.Send)
		_, err := prog.Run()
		return err
	},
}

// pageActions runs the controller for the interactive page.
type pageActions struct {
	ctrl *dapp.Controller

	mu sync.Mutex
	p  provider.Provider
}

func (a *pageActions) Connect(ctx context.Context) error {
	p, err := detectProvider(ctx)
	if err != nil {
		return a.ctrl.Fail(err)
	}
	if _, err := a.ctrl.Init(ctx, p); err != nil {
		if p != nil {
			p.Close()
		}
		return err
	}
	a.mu.Lock()
	a.p = p
	a.mu.Unlock()
	return nil
}

func (a *pageActions) GetMood(ctx context.Context) error {
	_, err := a.ctrl.GetMood(ctx)
	return err
}

func (a *pageActions) SetMood(ctx context.Context, input string) error {
	_, err := a.ctrl.SetMood(ctx, input, dapp.SetOptions{})
	return err
}

func (a *pageActions) close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.p != nil {
		a.p.Close()
	}
}
