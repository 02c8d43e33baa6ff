package artbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const dialTimeout = 10 * time.Second

// ensureSocket dials the event socket if no connection is live. A connection
// lost to a read error is cleared by the read loop, so the next caller here
// re-dials. Events that arrived while the handle was down are gone; the
// provider offers no replay.
func (c *Client) ensureSocket(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, resp, err := dialer.DialContext(ctx, c.sockURL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial %s: http %d: %w", c.sockURL, resp.StatusCode, err)
		}
		return fmt.Errorf("dial %s: %w", c.sockURL, err)
	}
	c.conn = conn
	go c.readLoop(conn)

	c.logger.Info().Str("url", c.sockURL).Msg("artbox: event socket connected")
	return nil
}

// readLoop consumes frames from one connection until it fails, normalizing
// each into the typed event stream.
func (c *Client) readLoop(conn *websocket.Conn) {
	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn().Err(err).Msg("artbox: event socket read failed")
			}
			return
		}

		evt, ok := c.normalize(data)
		if !ok {
			continue
		}
		select {
		case c.events <- evt:
		default:
			c.logger.Warn().
				Str("project_id", evt.ProjectID).
				Str("kind", string(evt.Kind)).
				Msg("artbox: event buffer full, dropping event")
		}
	}
}

// normalize parses one raw frame into the closed event union. Unrecognized or
// incomplete frames are logged and skipped rather than propagated untyped.
func (c *Client) normalize(data []byte) (Event, bool) {
	var frame wireEvent
	if err := json.Unmarshal(data, &frame); err != nil {
		c.logger.Debug().Err(err).Msg("artbox: discarding unparseable frame")
		return Event{}, false
	}
	if strings.TrimSpace(frame.ProjectID) == "" {
		c.logger.Debug().Str("type", frame.Type).Msg("artbox: discarding frame without project id")
		return Event{}, false
	}

	switch EventKind(frame.Type) {
	case EventJobProgress:
		if frame.JobID == "" || frame.Progress == nil {
			c.logger.Debug().Str("project_id", frame.ProjectID).Msg("artbox: discarding incomplete progress frame")
			return Event{}, false
		}
		return Event{
			Kind:      EventJobProgress,
			ProjectID: frame.ProjectID,
			JobID:     frame.JobID,
			Progress:  *frame.Progress,
		}, true
	case EventJobCompleted:
		if frame.JobID == "" {
			c.logger.Debug().Str("project_id", frame.ProjectID).Msg("artbox: discarding completion frame without job id")
			return Event{}, false
		}
		return Event{
			Kind:      EventJobCompleted,
			ProjectID: frame.ProjectID,
			JobID:     frame.JobID,
			ImageURL:  frame.ImageURL,
		}, true
	case EventProjectCompleted:
		return Event{Kind: EventProjectCompleted, ProjectID: frame.ProjectID}, true
	case EventProjectFailed:
		return Event{
			Kind:      EventProjectFailed,
			ProjectID: frame.ProjectID,
			Message:   frame.Message,
		}, true
	default:
		c.logger.Debug().Str("type", frame.Type).Msg("artbox: discarding unknown frame type")
		return Event{}, false
	}
}
