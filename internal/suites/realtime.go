package suites

import (
	"context"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fixturegrid/internal/harness"
	"github.com/vk/fixturegrid/modules/socketio_client"
)

// Realtime talks to a Socket.IO server that echoes opts.SocketIOEvent.
func Realtime(opts Options) harness.Suite {
	event := opts.SocketIOEvent
	if event == "" {
		event = "echo"
	}
	return harness.Suite{
		{Name: "realtime/echo", Fn: func(t *harness.T) {
			if opts.SocketIOURL == "" {
				t.Skip("no socket.io server configured")
			}
			client := harness.Get[*socketio_client.Client](t, socketio_client.FixtureName)
			require.True(t, client.Connected())

			ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
			defer cancel()

			payload := map[string]any{"message": "hello", "test": t.Name()}
			got, err := client.EmitAndWait(ctx, event, event, payload)
			require.NoError(t, err)
			assert.Equal(t, payload["message"], got.(map[string]any)["message"])
		}},
	}
}
