package driver

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrUnsupportedOS indicates no built-in sound player is known for this OS.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// PlayerOutput plays the alert clip with common, built-in tools:
//   - Linux:  `paplay <clip>`, volume via `pactl`
//   - macOS:  `afplay <clip>`, volume via `osascript`
//
// A custom player command overrides the platform default. Host machines
// have no vibrator; the vibration half of the feedback pattern only exists
// on device transports.
type PlayerOutput struct {
	// player is the command used to play the clip; empty picks a
	// platform default.
	player string
	// clip is the path to the alert sound file.
	clip string
}

// NewPlayerOutput creates an output playing the given clip.
func NewPlayerOutput(player, clip string) *PlayerOutput {
	return &PlayerOutput{
		player: player,
		clip:   clip,
	}
}

// Acquire raises the output volume to maximum and returns a restore
// function that puts it back to a sane level.
func (o *PlayerOutput) Acquire(ctx context.Context) (func(), error) {
	set, reset, err := volumeCommands()
	if err != nil {
		return nil, err
	}

	restore := func() {
		// Restore runs detached from the session context, which is
		// already canceled by the time the loop exits.
		_ = exec.Command(reset[0], reset[1:]...).Run() //nolint:errcheck // Best effort on teardown.
	}

	if err := exec.CommandContext(ctx, set[0], set[1:]...).Run(); err != nil {
		return restore, fmt.Errorf("raise volume: %w", err)
	}

	return restore, nil
}

// Ring plays the clip once.
func (o *PlayerOutput) Ring(ctx context.Context) error {
	player := o.player
	if player == "" {
		var err error
		if player, err = defaultPlayer(); err != nil {
			return err
		}
	}

	if err := exec.CommandContext(ctx, player, o.clip).Run(); err != nil {
		return fmt.Errorf("play clip: %w", err)
	}

	return nil
}

// defaultPlayer picks the platform's built-in clip player.
func defaultPlayer() (string, error) {
	osName := strings.ToLower(runtime.GOOS)

	switch {
	case strings.Contains(osName, "linux"):
		return "paplay", nil
	case strings.Contains(osName, "darwin"):
		return "afplay", nil
	default:
		return "", fmt.Errorf("no sound player for %s: %w", runtime.GOOS, ErrUnsupportedOS)
	}
}

// volumeCommands returns the raise and restore volume commands for this OS.
func volumeCommands() (set, reset []string, err error) {
	osName := strings.ToLower(runtime.GOOS)

	switch {
	case strings.Contains(osName, "linux"):
		return []string{"pactl", "set-sink-volume", "@DEFAULT_SINK@", "100%"},
			[]string{"pactl", "set-sink-volume", "@DEFAULT_SINK@", "70%"},
			nil
	case strings.Contains(osName, "darwin"):
		return []string{"osascript", "-e", "set volume output volume 100"},
			[]string{"osascript", "-e", "set volume output volume 70"},
			nil
	default:
		return nil, nil, fmt.Errorf("no volume control for %s: %w", runtime.GOOS, ErrUnsupportedOS)
	}
}
