// Package api implements the HTTP client for the playlist backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/marquee-cli/marquee/constant"
	"github.com/marquee-cli/marquee/log"
	"github.com/marquee-cli/marquee/network"
	"github.com/marquee-cli/marquee/schedule"
)

// devicesPath is the playlist endpoint; the device id travels in the POST body.
const devicesPath = "/api/devices"

// Client talks to one playlist backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a backend client on the shared tuned HTTP client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    network.Client,
	}
}

// FetchPlaylist retrieves the raw playlist rows for a device.
//
// The backend expects a POST with the device id in the body; older deployments
// only route GET with a query string, so 404 and 405 fall back to GET.
func (c *Client) FetchPlaylist(ctx context.Context, deviceID int) ([]schedule.Row, error) {
	rows, status, err := c.post(ctx, deviceID)
	if err == nil {
		return rows, nil
	}

	if status == http.StatusNotFound || status == http.StatusMethodNotAllowed {
		log.Debugf("devices POST returned %d, retrying as GET", status)
		return c.get(ctx, deviceID)
	}

	return nil, err
}

func (c *Client) post(ctx context.Context, deviceID int) ([]schedule.Row, int, error) {
	payload, err := json.Marshal(map[string]int{"deviceId": deviceID})
	if err != nil {
		return nil, 0, fmt.Errorf("marshal device request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+devicesPath, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("build device request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", constant.UserAgent)

	return c.do(req)
}

func (c *Client) get(ctx context.Context, deviceID int) ([]schedule.Row, error) {
	query := url.Values{"deviceId": []string{strconv.Itoa(deviceID)}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+devicesPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build device request: %w", err)
	}
	req.Header.Set("User-Agent", constant.UserAgent)

	rows, _, err := c.do(req)
	return rows, err
}

func (c *Client) do(req *http.Request) ([]schedule.Row, int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("playlist request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read playlist response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	rows, err := decodeRows(body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return rows, resp.StatusCode, nil
}

// decodeRows accepts the row payload shapes the backend has been observed to
// emit: a bare array, or an object wrapping the array under "data" or "items".
func decodeRows(body []byte) ([]schedule.Row, error) {
	var rows []schedule.Row
	if err := json.Unmarshal(body, &rows); err == nil {
		return rows, nil
	}

	var envelope struct {
		Data  []schedule.Row `json:"data"`
		Items []schedule.Row `json:"items"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode playlist rows: %w", err)
	}

	if envelope.Data != nil {
		return envelope.Data, nil
	}
	return envelope.Items, nil
}
