package socketio_client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/vk/fixturegrid/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Input defines the arguments of the `fixture "socketio_client"` block.
type Input struct {
	URL                string        `cty:"url"`
	Namespace          string        `cty:"namespace"`
	InsecureSkipVerify bool          `cty:"insecure_skip_verify"`
	ConnectTimeout     time.Duration `cty:"connect_timeout"`
}

// Client is a connected Socket.IO client.
type Client struct {
	io *socket.Socket
}

// Connect dials input.URL over the websocket transport and waits for the
// namespace to be joined.
func Connect(ctx context.Context, input *Input) (*Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before connecting: %w", err)
	}
	if input.URL == "" {
		return nil, fmt.Errorf("no socket.io url configured")
	}

	logger := ctxlog.FromContext(ctx).With("fixture", FixtureName, "url", input.URL)
	parsedURL, err := url.Parse(input.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("url %q must be absolute", input.URL)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if input.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(input.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	timer := time.NewTimer(input.ConnectTimeout)
	defer timer.Stop()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		logger.Info("Successfully connected", "sid", io.Id())
		return &Client{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-timer.C:
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", input.ConnectTimeout)
	}
}

// ID returns the session id assigned by the server.
func (c *Client) ID() string {
	return fmt.Sprint(c.io.Id())
}

// Connected reports whether the socket is still connected.
func (c *Client) Connected() bool {
	return c.io.Connected()
}

// Emit sends an event without waiting for anything in return.
func (c *Client) Emit(event string, data ...any) {
	c.io.Emit(event, data...)
}

// EmitAndWait emits emitEvent with data and waits for the first onEvent,
// returning its first argument.
func (c *Client) EmitAndWait(ctx context.Context, emitEvent, onEvent string, data any) (any, error) {
	if !c.io.Connected() {
		return nil, fmt.Errorf("socket.io client %s is not connected", c.ID())
	}
	logger := ctxlog.FromContext(ctx).With("sid", c.ID())

	done := make(chan any, 1)
	c.io.Once(types.EventName(onEvent), func(args ...any) {
		var payload any
		if len(args) > 0 {
			payload = args[0]
		}
		done <- payload
	})

	if logger.Enabled(ctx, slog.LevelDebug) {
		encoded, _ := json.Marshal(data)
		logger.Debug("Emitting event", "event", emitEvent, "data", string(encoded))
	}
	c.io.Emit(emitEvent, data)

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for event %q: %w", onEvent, ctx.Err())
	case payload := <-done:
		logger.Debug("Received response event", "event", onEvent)
		return payload, nil
	}
}

// Close disconnects the socket.
func (c *Client) Close() {
	c.io.Disconnect()
}
