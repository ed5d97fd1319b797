// Package tui implements the terminal rendering surface and the playback loop driving it.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/mo"
	"github.com/spf13/viper"

	"github.com/marquee-cli/marquee/api"
	"github.com/marquee-cli/marquee/creative"
	"github.com/marquee-cli/marquee/internal/ui"
	"github.com/marquee-cli/marquee/key"
	"github.com/marquee-cli/marquee/playback"
	"github.com/marquee-cli/marquee/player"
	"github.com/marquee-cli/marquee/playlist"
	"github.com/marquee-cli/marquee/socket"
	"github.com/marquee-cli/marquee/util"
)

// statefulBubble encapsulates the surface state: the playback core, the
// backend clients, and the bubbletea component models.
type statefulBubble struct {
	state         state
	statesHistory util.Stack[state]
	loading       bool

	keymap *statefulKeymap

	// components
	spinnerC  spinner.Model
	progressC progress.Model
	helpC     help.Model

	// playback core
	cursor     playlist.Cursor
	clock      playback.Clock
	catalog    []creative.Item // full mapped set, refiltered on the wall tick
	armed      playback.Armed
	phase      playback.Phase
	transition playback.Style
	onScreen   mo.Option[creative.Item]
	outgoing   mo.Option[creative.Item]
	revealed   bool
	shownAt    time.Time

	// services
	apiC     *api.Client
	socketC  *socket.Client
	surface  player.Player
	listener *player.EventListener
	deviceID int

	// warmed media paths by creative id
	warmed map[int]string

	// externalMsgChannel carries messages produced outside the bubbletea loop:
	// push-channel frames and video surface events.
	externalMsgChannel chan tea.Msg

	lastError     error
	fetchFailed   bool
	width, height int
	notifier      *ui.Model

	options *Options
}

// raiseError dispatches a terminal error and transitions the surface to the failure view.
func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.clock.Disarm()
	b.newState(errorState)
}

// setState performs a synchronous transition of both the surface state and its keymap.
func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// newState transitions to a target state, recording the previous state so the
// error view can return to it.
func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}

	if b.state != loadingState && b.state != errorState {
		b.statesHistory.Push(b.state)
	}

	b.setState(s)
}

// previousState restores the surface to its predecessor in the navigation stack.
func (b *statefulBubble) previousState() {
	if b.statesHistory.Len() > 0 {
		b.setState(b.statesHistory.Pop())
	}
}

// resize propagates terminal dimension changes to the child component models.
func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()

	b.width = width - x
	b.height = height - y

	b.progressC.Width = b.width
	b.helpC.Width = b.width
}

func (b *statefulBubble) startLoading() tea.Cmd {
	b.loading = true
	return b.spinnerC.Tick
}

func (b *statefulBubble) stopLoading() tea.Cmd {
	b.loading = false
	return nil
}

// shutdown releases the external resources the surface owns.
func (b *statefulBubble) shutdown() {
	b.clock.Disarm()

	if b.listener != nil {
		b.listener.Stop()
		b.listener = nil
	}
	if b.surface != nil {
		util.Ignore(b.surface.Close)
		b.surface = nil
	}
	if b.socketC != nil {
		b.socketC.Close()
	}
}

// newBubble performs a complete initialization of the surface model.
func newBubble(options *Options) *statefulBubble {
	keymap := newStatefulKeymap()
	bubble := statefulBubble{
		keymap:   keymap,
		deviceID: options.DeviceID,
		apiC:     api.NewClient(viper.GetString(key.APIBaseURL)),
		warmed:   make(map[int]string),

		externalMsgChannel: make(chan tea.Msg, 16),

		notifier: &ui.Model{},
		options:  options,
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bubble.progressC = progress.New(progress.WithDefaultGradient())

	if urls := viper.GetStringSlice(key.SocketURLs); len(urls) > 0 {
		baseDelay := time.Duration(viper.GetInt(key.SocketReconnectDelay)) * time.Millisecond
		bubble.socketC = socket.New(urls, options.DeviceID, baseDelay)
		bubble.socketC.Subscribe(bubble.dispatchPush)
	}

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return &bubble
}

// dispatchPush converts push-channel frames into bubbletea messages.
// Runs on the socket read goroutine.
func (b *statefulBubble) dispatchPush(msg socket.Message) {
	switch msg.Route() {
	case socket.EventRows:
		b.externalMsgChannel <- rowsFetchedMsg{rows: msg.Data}
	case socket.EventItems:
		b.externalMsgChannel <- itemsPushedMsg{items: msg.Items}
	case socket.EventError:
		b.externalMsgChannel <- ui.BackendErrorMsg{Message: msg.Error}
	case socket.EventWelcome:
		b.externalMsgChannel <- ui.BackendClearMsg{}
	}
}

// waitForExternalMsg forwards one message from the external channel into the
// loop. The wrapper lets Update re-issue exactly one waiter per delivery.
func (b *statefulBubble) waitForExternalMsg() tea.Cmd {
	return func() tea.Msg {
		return externalMsg{inner: <-b.externalMsgChannel}
	}
}
