// Package ui provides internal state management and rendering utilities for terminal notifications.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Model encapsulates the state for non-blocking terminal alerts: a transient
// notification line and a sticky backend banner.
type Model struct {
	notification string
	notifiedAt   time.Time

	// banner persists until the backend clears it with a welcome.
	banner string
}

// ClearNotificationMsg resets the transient notification state.
type ClearNotificationMsg struct{}

// BackendErrorMsg raises the sticky backend banner.
type BackendErrorMsg struct {
	Message string
}

// BackendClearMsg drops the sticky backend banner.
type BackendClearMsg struct{}

// ClearNotification returns a delayed tea.Cmd that clears the current
// transient notification after a fixed duration.
func ClearNotification() tea.Cmd {
	return tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
		return ClearNotificationMsg{}
	})
}

// Update processes incoming messages to modify the notification state.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case string:
		m.notification = msg
		m.notifiedAt = time.Now()
		return ClearNotification()
	case ClearNotificationMsg:
		m.notification = ""
		return nil
	case BackendErrorMsg:
		m.banner = msg.Message
		return nil
	case BackendClearMsg:
		m.banner = ""
		return nil
	}
	return nil
}

// Banner returns the sticky backend banner, empty when none is raised.
func (m *Model) Banner() string {
	return m.banner
}

// View injects the current transient notification into the terminal view buffer.
func (m *Model) View(mainContent string) string {
	if m.notification == "" {
		return mainContent
	}

	lines := strings.Split(mainContent, "\n")
	notifier := "\033[90m" + m.notification + "\033[0m"

	if len(lines) > 0 {
		lines[len(lines)-1] = lines[len(lines)-1] + "  " + notifier
	}
	return strings.Join(lines, "\n")
}
