package socket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"
)

var upgrader = websocket.Upgrader{}

func TestRoute(t *testing.T) {
	Convey("Route", t, func() {
		Convey("Welcome wins over every payload", func() {
			m := Message{Type: "welcome", Error: "stale", Data: []map[string]any{{"id": 1}}}
			So(m.Route(), ShouldEqual, EventWelcome)
		})

		Convey("Errors route before payloads", func() {
			m := Message{Error: "device not found", Data: []map[string]any{{"id": 1}}}
			So(m.Route(), ShouldEqual, EventError)
		})

		Convey("Pre-mapped items route before raw rows", func() {
			m, ok := Decode([]byte(`{"items":[{"id":5}],"data":[{"id":5}]}`))
			So(ok, ShouldBeTrue)
			So(m.Route(), ShouldEqual, EventItems)
		})

		Convey("Raw rows route to rows", func() {
			m, ok := Decode([]byte(`{"data":[{"id":5,"creative_url":"https://cdn/a.jpg"}]}`))
			So(ok, ShouldBeTrue)
			So(m.Route(), ShouldEqual, EventRows)
		})

		Convey("An empty envelope routes to none", func() {
			So(Message{}.Route(), ShouldEqual, EventNone)
		})

		Convey("Malformed frames fail to decode", func() {
			_, ok := Decode([]byte(`{"data":`))
			So(ok, ShouldBeFalse)
		})
	})
}

func TestClient(t *testing.T) {
	Convey("Client", t, func() {
		Convey("Announces the device and dispatches inbound messages", func() {
			subscribed := make(chan Subscribe, 1)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				conn, err := upgrader.Upgrade(w, r, nil)
				if err != nil {
					return
				}
				defer conn.Close()

				var sub Subscribe
				_, frame, err := conn.ReadMessage()
				if err != nil || json.Unmarshal(frame, &sub) != nil {
					return
				}
				subscribed <- sub

				_ = conn.WriteJSON(Message{Type: "welcome"})
				_ = conn.WriteJSON(Message{Error: "device offline"})
			}))
			defer server.Close()

			url := "ws" + strings.TrimPrefix(server.URL, "http")
			client := New([]string{url}, 12, time.Millisecond)
			defer client.Close()

			received := make(chan Message, 2)
			unsubscribe := client.Subscribe(func(m Message) { received <- m })
			defer unsubscribe()

			select {
			case sub := <-subscribed:
				So(sub.DeviceID, ShouldEqual, 12)
			case <-time.After(2 * time.Second):
				t.Fatal("no subscribe payload received")
			}

			var events []Event
			for range 2 {
				select {
				case m := <-received:
					events = append(events, m.Route())
				case <-time.After(2 * time.Second):
					t.Fatal("inbound message not dispatched")
				}
			}
			So(events, ShouldResemble, []Event{EventWelcome, EventError})
		})

		Convey("Send fails while disconnected", func() {
			client := New(nil, 12, time.Millisecond)
			defer client.Close()

			So(client.Send(Subscribe{DeviceID: 12}), ShouldNotBeNil)
		})

		Convey("Unsubscribed handlers stop receiving", func() {
			client := New(nil, 12, time.Millisecond)
			defer client.Close()

			calls := 0
			unsubscribe := client.Subscribe(func(Message) { calls++ })
			unsubscribe()

			client.mu.Lock()
			So(len(client.subscribers), ShouldEqual, 0)
			client.mu.Unlock()
			So(calls, ShouldEqual, 0)
		})
	})
}
