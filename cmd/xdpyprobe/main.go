// xdpyprobe pokes at an X server through any of the available
// connection backends. It exists mostly to exercise the backends and
// to sanity check a display from the command line.
package main

import (
	"fmt"
	"os"

	"deedles.dev/xdpy"
	"deedles.dev/xdpy/xcb"
	"deedles.dev/xdpy/xgbconn"
	"deedles.dev/xdpy/xlib"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var logger = log.New(os.Stderr)

var (
	flagBackend     string
	flagDisplay     string
	flagNonBlocking bool
	flagSpin        bool
	flagVerbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "xdpyprobe",
	Short: "xdpyprobe inspects an X display connection",
	Long: `xdpyprobe opens a connection to an X server and inspects it.
It can connect through native libxcb, through native libX11, or
through a pure Go connection, and exposes the same operations over
all three.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			logger.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagBackend, "backend", "b", "xcb", "connection backend (xcb, xlib, or xgb)")
	pf.StringVarP(&flagDisplay, "display", "d", "", "display to connect to (defaults to $DISPLAY)")
	pf.BoolVar(&flagNonBlocking, "non-blocking", false, "make wait operations return immediately")
	pf.BoolVar(&flagSpin, "spin", false, "use spinlocks for internal locking")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(eventsCmd)
}

func connect() (xdpy.Display, error) {
	cfg := xdpy.Config{NonBlocking: flagNonBlocking}
	if flagSpin {
		cfg.Locking = xdpy.LockSpin
	}

	logger.Debug("connecting", "backend", flagBackend, "display", flagDisplay)
	switch flagBackend {
	case "xcb":
		d := xcb.Dialer{Config: cfg}
		return d.Connect(flagDisplay)
	case "xlib":
		d := xlib.Dialer{Config: cfg}
		return d.Connect(flagDisplay)
	case "xgb":
		d := xgbconn.Dialer{Config: cfg}
		return d.Connect(flagDisplay)
	default:
		return nil, fmt.Errorf("unknown backend %q", flagBackend)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Fatal(err)
	}
}
