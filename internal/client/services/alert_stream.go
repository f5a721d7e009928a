package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// AlertEvent is one message pushed on the live alert stream.
type AlertEvent struct {
	Type  string `json:"type"` // created, acknowledged, resolved
	Alert Alert  `json:"alert"`
}

// Endpoint is what a stream needs from the HTTP client.
type Endpoint interface {
	BaseURL() string
	Token() string
}

// WatchAlerts connects to the live alert stream and calls fn for each event
// until ctx is cancelled or the connection drops.
func WatchAlerts(ctx context.Context, ep Endpoint, fn func(AlertEvent)) error {
	wsURL := toWebsocketURL(ep.BaseURL()) + "/alerts/stream"

	header := http.Header{}
	if tok := ep.Token(); tok != "" {
		header.Set("Authorization", "Bearer "+tok)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("alert stream: status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("alert stream: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	})
	defer stop()

	for {
		var ev AlertEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read alert event: %w", err)
		}
		fn(ev)
	}
}

func toWebsocketURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}
