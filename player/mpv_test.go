//go:build !windows

package player

import (
	"bufio"
	"net"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// fakeIPC answers every command on a unix socket with the given response line.
func fakeIPC(t *testing.T, response string) string {
	t.Helper()

	path := filepath.Join(os.TempDir(), "marquee-test.sock")
	_ = os.Remove(path)

	listener, err := net.Listen("unix", path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { listener.Close(); os.Remove(path) })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				scanner := bufio.NewScanner(conn)
				for scanner.Scan() {
					_, _ = conn.Write([]byte(response + "\n"))
				}
			}(conn)
		}
	}()

	return path
}

func TestIPC(t *testing.T) {
	Convey("doSendCommand", t, func() {
		Convey("Returns the data field of a successful response", func() {
			socket := fakeIPC(t, `{"data":12.5,"error":"success"}`)

			data, err := doSendCommand(socket, []interface{}{"get_property", "time-pos"})
			So(err, ShouldBeNil)
			So(data, ShouldEqual, 12.5)
		})

		Convey("Surfaces mpv errors", func() {
			socket := fakeIPC(t, `{"error":"property unavailable"}`)

			_, err := doSendCommand(socket, []interface{}{"get_property", "time-pos"})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "property unavailable")
		})
	})
}

func TestEventDispatch(t *testing.T) {
	Convey("processEvent", t, func() {
		var positions []float64
		ends := 0
		el := NewEventListener("", func(s float64) { positions = append(positions, s) }, func() { ends++ })

		Convey("Dispatches time-pos changes", func() {
			el.processEvent(`{"event":"property-change","id":1,"name":"time-pos","data":3.25}`)
			So(positions, ShouldResemble, []float64{3.25})
			So(ends, ShouldEqual, 0)
		})

		Convey("Dispatches eof-reached only when true", func() {
			el.processEvent(`{"event":"property-change","id":2,"name":"eof-reached","data":false}`)
			So(ends, ShouldEqual, 0)

			el.processEvent(`{"event":"property-change","id":2,"name":"eof-reached","data":true}`)
			So(ends, ShouldEqual, 1)
		})

		Convey("Ignores unrelated events and garbage", func() {
			el.processEvent(`{"event":"playback-restart"}`)
			el.processEvent(`{"event":"property-change","name":"time-pos","data":null}`)
			el.processEvent(`not json`)
			So(positions, ShouldBeEmpty)
			So(ends, ShouldEqual, 0)
		})
	})
}

func TestSanitization(t *testing.T) {
	Convey("sanitizeMediaTarget", t, func() {
		Convey("Accepts http and https URLs", func() {
			u, err := sanitizeMediaTarget("https://cdn.example.com/spot.mp4")
			So(err, ShouldBeNil)
			So(u, ShouldEqual, "https://cdn.example.com/spot.mp4")
		})

		Convey("Cleans local file paths", func() {
			u, err := sanitizeMediaTarget("/cache/media//spot.mp4")
			So(err, ShouldBeNil)
			So(u, ShouldEqual, "/cache/media/spot.mp4")
		})

		Convey("Rejects flag-shaped, empty, and exotic-scheme targets", func() {
			_, err := sanitizeMediaTarget("--vo=null")
			So(err, ShouldNotBeNil)

			_, err = sanitizeMediaTarget("  ")
			So(err, ShouldNotBeNil)

			_, err = sanitizeMediaTarget("ftp://host/file.mp4")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("sanitizeTitle", t, func() {
		So(sanitizeTitle(" Spot\n#42\t"), ShouldEqual, "Spot #42")
	})
}
