package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/Mohsinsiddi/w3mood/internal/dapp"
	"github.com/Mohsinsiddi/w3mood/internal/ui"
)

// lineDisplay prints controller updates one per line. Waiting states get a
// spinner when out is a terminal.
type lineDisplay struct {
	mu      sync.Mutex
	out     io.Writer
	animate bool
	spin    *ui.Spinner
}

func newLineDisplay(out io.Writer) *lineDisplay {
	animate := false
	if f, ok := out.(*os.File); ok {
		animate = term.IsTerminal(int(f.Fd()))
	}
	return &lineDisplay{out: out, animate: animate}
}

func (d *lineDisplay) stopSpinner() {
	if d.spin != nil {
		d.spin.Stop()
		d.spin = nil
	}
}

func (d *lineDisplay) Status(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopSpinner()
	switch {
	case msg == "":
	case d.animate && (msg == dapp.MsgPending || msg == dapp.MsgWaiting):
		d.spin = ui.NewSpinner(d.out, msg)
		d.spin.Start()
	case msg == dapp.MsgUpdated:
		fmt.Fprintln(d.out, ui.Success(msg))
	case msg == dapp.MsgSwitched:
		fmt.Fprintln(d.out, ui.Warn(msg))
	default:
		fmt.Fprintln(d.out, ui.Info(msg))
	}
}

func (d *lineDisplay) Error(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if msg == "" {
		return
	}
	d.stopSpinner()
	fmt.Fprintln(d.out, ui.Err(msg))
}

func (d *lineDisplay) Result(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopSpinner()
	if msg != "" {
		fmt.Fprintln(d.out, ui.Mood(msg))
	}
}

// Close stops a running spinner.
func (d *lineDisplay) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopSpinner()
}
