package player

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/marquee-cli/marquee/log"
)

// EventListener observes the two mpv properties the advance logic depends on:
// time-pos drives trim-window position checks, eof-reached signals a video's
// natural end.
type EventListener struct {
	socketPath string
	conn       net.Conn
	onPosition func(seconds float64)
	onEnd      func()
	stopCh     chan struct{}
	mu         sync.Mutex
	listening  bool
}

// NewEventListener creates a listener for the given socket. Either callback
// may be nil.
func NewEventListener(socketPath string, onPosition func(seconds float64), onEnd func()) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		onPosition: onPosition,
		onEnd:      onEnd,
		stopCh:     make(chan struct{}),
	}
}

// Start registers the property observers and begins the read loop.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	observed := []struct {
		id   int
		name string
	}{
		{1, "time-pos"},
		{2, "eof-reached"},
	}

	for _, prop := range observed {
		if _, err := doSendCommand(el.socketPath, []interface{}{"observe_property", prop.id, prop.name}); err != nil {
			return fmt.Errorf("observe %s: %w", prop.name, err)
		}
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}
	el.conn = conn
	el.listening = true

	go el.readLoop()

	log.Infof("mpv event listener started on %s", el.socketPath)
	return nil
}

// Stop terminates the listener.
func (el *EventListener) Stop() {
	el.mu.Lock()
	defer el.mu.Unlock()

	if !el.listening {
		return
	}

	close(el.stopCh)
	if el.conn != nil {
		el.conn.Close()
	}
	el.listening = false
}

// readLoop reads the newline-delimited JSON events mpv emits for observed
// properties until the connection breaks or Stop is called.
func (el *EventListener) readLoop() {
	defer func() {
		el.mu.Lock()
		el.listening = false
		el.mu.Unlock()
	}()

	buf := make([]byte, 4096)
	var remainder []byte

	for {
		select {
		case <-el.stopCh:
			return
		default:
		}

		if err := el.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}

		n, err := el.conn.Read(buf)
		if err != nil {
			if strings.Contains(err.Error(), "timeout") || strings.Contains(err.Error(), "deadline") {
				continue
			}
			log.Warnf("event listener read error: %v", err)
			return
		}

		data := append(remainder, buf[:n]...)
		remainder = nil

		lines := strings.Split(string(data), "\n")
		for i, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			if i == len(lines)-1 && !strings.HasSuffix(string(data), "\n") {
				remainder = []byte(line)
				continue
			}

			el.processEvent(line)
		}
	}
}

// processEvent dispatches a single property-change line.
func (el *EventListener) processEvent(line string) {
	var event struct {
		Event string      `json:"event"`
		Name  string      `json:"name"`
		Data  interface{} `json:"data"`
	}
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		return
	}

	if event.Event != "property-change" {
		return
	}

	switch event.Name {
	case "time-pos":
		if seconds, ok := event.Data.(float64); ok && el.onPosition != nil {
			el.onPosition(seconds)
		}
	case "eof-reached":
		if reached, ok := event.Data.(bool); ok && reached && el.onEnd != nil {
			el.onEnd()
		}
	}
}
