package pusher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Protocol events.
const (
	eventConnectionEstablished = "pusher:connection_established"
	eventError                 = "pusher:error"
	eventPing                  = "pusher:ping"
	eventPong                  = "pusher:pong"
	eventSubscribe             = "pusher:subscribe"
	eventUnsubscribe           = "pusher:unsubscribe"
)

const writeTimeout = 10 * time.Second

type frame struct {
	Event   string          `json:"event"`
	Channel string          `json:"channel,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Client is a live connection to the service. It is safe for concurrent use.
type Client struct {
	key      string
	socketID string
	conn     *websocket.Conn
	events   *fanout
	logger   *slog.Logger

	wmu sync.Mutex

	mu       sync.RWMutex
	channels []string

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Dial connects to the service with the application key and waits for the
// connection to be established.
func Dial(ctx context.Context, key string, opts Options) (*Client, error) {
	if key == "" {
		return nil, ErrMissingKey
	}
	opts.setDefaults()

	endpoint, err := opts.endpoint(key)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.HandshakeTimeout)
	defer cancel()

	dialer := websocket.Dialer{HandshakeTimeout: opts.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, errors.Join(ErrHandshakeFailed, err)
	}

	socketID, err := awaitEstablished(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	c := &Client{
		key:      key,
		socketID: socketID,
		conn:     conn,
		events:   newFanout(opts.EventBuffer),
		logger:   opts.Logger.With(slog.String("socket_id", socketID)),
		done:     make(chan struct{}),
	}
	go c.readLoop()

	return c, nil
}

func awaitEstablished(ctx context.Context, conn *websocket.Conn) (string, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		defer conn.SetReadDeadline(time.Time{})
	}

	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		return "", errors.Join(ErrHandshakeFailed, err)
	}

	switch f.Event {
	case eventConnectionEstablished:
		var info struct {
			SocketID string `json:"socket_id"`
		}
		if err := json.Unmarshal(unquote(f.Data), &info); err != nil {
			return "", errors.Join(ErrHandshakeFailed, err)
		}
		return info.SocketID, nil
	case eventError:
		return "", fmt.Errorf("%w: %s", ErrHandshakeFailed, unquote(f.Data))
	default:
		return "", fmt.Errorf("%w: unexpected event %q", ErrHandshakeFailed, f.Event)
	}
}

// SocketID returns the identifier assigned by the service.
func (c *Client) SocketID() string { return c.socketID }

// Subscribe joins a channel. Subscribing twice to one channel is a no-op.
func (c *Client) Subscribe(ctx context.Context, channel string) error {
	if channel == "" {
		return ErrInvalidChannel
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if slices.Contains(c.channels, channel) {
		return nil
	}
	if err := c.send(ctx, eventSubscribe, map[string]string{"channel": channel}); err != nil {
		return err
	}
	c.channels = append(c.channels, channel)
	return nil
}

// Unsubscribe leaves a channel.
func (c *Client) Unsubscribe(ctx context.Context, channel string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.Index(c.channels, channel)
	if i < 0 {
		return nil
	}
	if err := c.send(ctx, eventUnsubscribe, map[string]string{"channel": channel}); err != nil {
		return err
	}
	c.channels = slices.Delete(c.channels, i, i+1)
	return nil
}

// Subscriptions returns subscribed channels in subscription order.
func (c *Client) Subscriptions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.channels)
}

// Events returns a subscription to incoming channel events. It ends when ctx
// is done, when it is closed, or when the client closes.
func (c *Client) Events(ctx context.Context) *Subscription {
	return c.events.subscribe(ctx)
}

// Done is closed when the connection is gone.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close closes the connection. It is idempotent.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.wmu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(time.Second))
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.wmu.Unlock()

		c.closeErr = c.conn.Close()
		<-c.done
	})
	return c.closeErr
}

func (c *Client) send(ctx context.Context, event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	_ = c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteJSON(frame{Event: event, Data: raw}); err != nil {
		return fmt.Errorf("pusher: send %s: %w", event, err)
	}
	return nil
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer c.events.close()

	for {
		var f frame
		if err := c.conn.ReadJSON(&f); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) && !errors.Is(err, websocket.ErrCloseSent) {
				c.logger.Debug("pusher connection ended", slog.String("error", err.Error()))
			}
			return
		}

		switch f.Event {
		case eventPing:
			if err := c.send(context.Background(), eventPong, struct{}{}); err != nil {
				c.logger.Warn("pusher pong failed", slog.String("error", err.Error()))
			}
		case eventError:
			c.logger.Warn("pusher error event", slog.String("data", string(unquote(f.Data))))
		default:
			c.events.publish(Event{Name: f.Event, Channel: f.Channel, Data: unquote(f.Data)})
		}
	}
}

// unquote returns the contents of a JSON string payload, or raw unchanged.
func unquote(raw json.RawMessage) []byte {
	var s string
	if len(raw) > 0 && raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
		return []byte(s)
	}
	return raw
}
