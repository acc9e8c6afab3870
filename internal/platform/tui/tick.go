// Package tui is the terminal front end of the pasture: a Bubble Tea model
// drawing the scene and the flock, run locally or over SSH via Wish.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// frameInterval paces cloud drift and the clock in the status line.
const frameInterval = 250 * time.Millisecond

// frameMsg advances the animation by one frame.
type frameMsg time.Time

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}
