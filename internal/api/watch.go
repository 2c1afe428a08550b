package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/agenticauto/autobuilder/internal/logging"
	"github.com/agenticauto/autobuilder/internal/version"
)

// WatchPath is the hosted automation event feed endpoint
const WatchPath = "/ws/hosted-automations"

const (
	// Time allowed to write a control message to the peer
	writeWait = 10 * time.Second

	// Time allowed between messages or pings from the peer
	pongWait = 60 * time.Second
)

// Hosted automation event names
const (
	EventCreated = "created"
	EventToggled = "toggled"
	EventDeleted = "deleted"
)

// ErrFeedUnavailable is returned by Watch when the backend has no event feed
var ErrFeedUnavailable = errors.New("event feed not available")

// Event announces a change to a hosted automation
type Event struct {
	Event string `json:"event"`
	ID    int    `json:"id"`
}

// WatchURL converts the base URL into the websocket feed URL
func (c *Client) WatchURL() (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported base URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + WatchPath
	return u.String(), nil
}

// Watch streams hosted automation events into events until ctx is done or
// the connection drops. It returns nil on cancellation and
// ErrFeedUnavailable when the backend does not offer the feed.
func (c *Client) Watch(ctx context.Context, events chan<- Event) error {
	wsURL, err := c.WatchURL()
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())
	header.Set("X-Request-ID", c.newRequestID())
	if c.Token != "" {
		header.Set("Authorization", "Bearer "+c.Token)
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 15 * time.Second,
	}
	conn, resp, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusMethodNotAllowed {
				return ErrFeedUnavailable
			}
		}
		if ctx.Err() != nil {
			return nil
		}
		return NewNetworkError("connect to event feed failed", err)
	}
	logging.Debug("Event feed connected", zap.String("url", wsURL))

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			_ = conn.Close()
		case <-done:
			_ = conn.Close()
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return NewNetworkError("event feed closed", err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		logging.LogEvent("feed", ev.Event, ev.ID)

		select {
		case events <- ev:
		case <-ctx.Done():
			return nil
		}
	}
}
