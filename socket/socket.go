package socket

import (
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/marquee-cli/marquee/log"
)

const (
	// maxReconnectDelay caps the exponential backoff.
	maxReconnectDelay = 10 * time.Second
	// reconnectJitter is the random spread added to every reconnect delay.
	reconnectJitter = 300 * time.Millisecond

	writeTimeout = 10 * time.Second
)

// Handler receives every decoded inbound message.
type Handler func(Message)

// Client maintains a websocket connection to one of the configured endpoints,
// rotating endpoints and backing off exponentially on failure. It exposes only
// subscribe, send and close; the playback core never sees retry internals.
type Client struct {
	urls      []string
	baseDelay time.Duration
	deviceID  int

	mu           sync.Mutex
	conn         *websocket.Conn
	urlIndex     int
	attempt      int
	closedByUser bool
	subscribers  map[int]Handler
	nextSubID    int
}

// New creates a client and starts connecting in the background.
func New(urls []string, deviceID int, baseDelay time.Duration) *Client {
	if baseDelay <= 0 {
		baseDelay = 1500 * time.Millisecond
	}

	c := &Client{
		urls:        urls,
		baseDelay:   baseDelay,
		deviceID:    deviceID,
		subscribers: make(map[int]Handler),
	}

	if len(urls) > 0 {
		go c.run()
	}
	return c
}

// Subscribe registers a handler for inbound messages and returns its
// unsubscribe function.
func (c *Client) Subscribe(h Handler) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = h

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// Send marshals and writes a payload on the live connection.
func (c *Client) Send(v any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return errors.New("socket not connected")
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// Close terminates the connection and stops reconnecting.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closedByUser = true
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// run is the connect/read/reconnect loop.
func (c *Client) run() {
	for {
		c.mu.Lock()
		if c.closedByUser {
			c.mu.Unlock()
			return
		}
		target := c.urls[c.urlIndex]
		c.mu.Unlock()

		conn, _, err := websocket.DefaultDialer.Dial(target, nil)
		if err != nil {
			log.Warnf("socket dial %s: %v", target, err)
			c.scheduleReconnect()
			continue
		}

		log.Infof("socket connected to %s", target)

		c.mu.Lock()
		c.conn = conn
		c.attempt = 0
		c.mu.Unlock()

		// Announce the device so the backend routes this screen's updates here.
		if err := c.Send(Subscribe{DeviceID: c.deviceID}); err != nil {
			log.Warnf("socket initial payload send failed: %v", err)
		}

		c.readLoop(conn)

		c.mu.Lock()
		c.conn = nil
		stop := c.closedByUser
		c.mu.Unlock()
		if stop {
			return
		}

		c.scheduleReconnect()
	}
}

// readLoop dispatches inbound frames until the connection breaks.
func (c *Client) readLoop(conn *websocket.Conn) {
	defer conn.Close()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("socket read: %v", err)
			return
		}

		msg, ok := Decode(frame)
		if !ok {
			log.Warnf("socket frame parse error, skipping")
			continue
		}

		c.mu.Lock()
		handlers := make([]Handler, 0, len(c.subscribers))
		for _, h := range c.subscribers {
			handlers = append(handlers, h)
		}
		c.mu.Unlock()

		for _, h := range handlers {
			h(msg)
		}
	}
}

// scheduleReconnect sleeps through the backoff window and rotates endpoints.
func (c *Client) scheduleReconnect() {
	c.mu.Lock()
	c.attempt++
	if len(c.urls) > 1 {
		c.urlIndex = (c.urlIndex + 1) % len(c.urls)
	}
	attempt := c.attempt
	c.mu.Unlock()

	delay := c.baseDelay << (attempt - 1)
	if delay > maxReconnectDelay || delay <= 0 {
		delay = maxReconnectDelay
	}
	delay += time.Duration(rand.Int63n(int64(reconnectJitter)))

	log.Debugf("socket reconnect in %s (attempt %d)", delay, attempt)
	time.Sleep(delay)
}
