// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Device Identity - these keys bind the client to a single signage device.
const (
	DeviceID = "device.id"
)

// Playlist Backend - these keys configure the HTTP playlist source and its polling cadence.
const (
	APIBaseURL      = "api.base_url"
	APIPollInterval = "api.poll_interval"
)

// Push Channel - these keys configure the websocket endpoints used for live playlist updates.
const (
	SocketURLs           = "socket.urls"
	SocketReconnectDelay = "socket.reconnect_delay"
)

// Playback Engine - these keys govern item display timing when the backend omits durations.
const (
	PlaybackFallbackDuration = "playback.fallback_duration"
	PlaybackMinimumDuration  = "playback.minimum_duration"
)

// Video Surface - these keys maintain the configuration for the external video playback engine.
const (
	Player              = "player.default"
	PlayerVideoExternal = "player.video_external"
)

// Terminal User Interface (TUI) - these keys define the rendering surface's optional chrome.
const (
	TUIShowProgress = "tui.show_progress"
	TUIShowClock    = "tui.show_clock"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
