package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFetchPlaylist(t *testing.T) {
	Convey("FetchPlaylist", t, func() {
		rows := []map[string]any{
			{"id": 314, "creative_type": "jpg", "creative_url": "https://cdn/a.jpg", "media_duration": 4},
		}

		Convey("POSTs the device id in the body", func() {
			var (
				gotMethod string
				gotPath   string
				gotBody   map[string]int
			)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				gotPath = r.URL.Path
				_ = json.NewDecoder(r.Body).Decode(&gotBody)
				_ = json.NewEncoder(w).Encode(rows)
			}))
			defer server.Close()

			got, err := NewClient(server.URL).FetchPlaylist(context.Background(), 3)
			So(err, ShouldBeNil)
			So(gotMethod, ShouldEqual, http.MethodPost)
			So(gotPath, ShouldEqual, "/api/devices")
			So(gotBody["deviceId"], ShouldEqual, 3)
			So(len(got), ShouldEqual, 1)
			So(got[0]["creative_url"], ShouldEqual, "https://cdn/a.jpg")
		})

		Convey("Falls back to GET on 405", func() {
			var gotQuery string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodPost {
					w.WriteHeader(http.StatusMethodNotAllowed)
					return
				}
				gotQuery = r.URL.Query().Get("deviceId")
				_ = json.NewEncoder(w).Encode(rows)
			}))
			defer server.Close()

			got, err := NewClient(server.URL).FetchPlaylist(context.Background(), 3)
			So(err, ShouldBeNil)
			So(gotQuery, ShouldEqual, "3")
			So(len(got), ShouldEqual, 1)
		})

		Convey("Does not fall back on server errors", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			}))
			defer server.Close()

			_, err := NewClient(server.URL).FetchPlaylist(context.Background(), 3)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "HTTP 500")
		})

		Convey("Accepts enveloped row payloads", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"data": rows})
			}))
			defer server.Close()

			got, err := NewClient(server.URL).FetchPlaylist(context.Background(), 3)
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 1)
		})
	})
}
