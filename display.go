package xdpy

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ParseDisplay splits an X11 display name of the form
// [host]:display[.screen]. An empty name falls back to the $DISPLAY
// environment variable.
func ParseDisplay(name string) (host string, display, screen int, err error) {
	if name == "" {
		name = os.Getenv("DISPLAY")
	}
	if name == "" {
		return "", 0, 0, fmt.Errorf("no display name and DISPLAY is unset")
	}

	host, rest, ok := strings.Cut(name, ":")
	if !ok {
		return "", 0, 0, fmt.Errorf("malformed display name %q", name)
	}

	num, screenstr, _ := strings.Cut(rest, ".")
	display, err = strconv.Atoi(num)
	if err != nil {
		return "", 0, 0, fmt.Errorf("malformed display number in %q: %w", name, err)
	}
	if screenstr != "" {
		screen, err = strconv.Atoi(screenstr)
		if err != nil {
			return "", 0, 0, fmt.Errorf("malformed screen number in %q: %w", name, err)
		}
	}

	return host, display, screen, nil
}

// SocketPath determines the path to the display server's Unix domain
// socket for the given display name, falling back to $DISPLAY when
// the name is empty. It does not attempt to determine if the value
// corresponds to an actual socket, and it fails for display names
// that address a remote host.
func SocketPath(name string) (string, error) {
	host, display, _, err := ParseDisplay(name)
	if err != nil {
		return "", err
	}
	if host != "" && host != "unix" {
		return "", fmt.Errorf("display %q is not local", name)
	}

	return fmt.Sprintf("/tmp/.X11-unix/X%v", display), nil
}
