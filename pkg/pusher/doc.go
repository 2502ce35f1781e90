// Package pusher is a minimal client for the hosted Pusher publish/subscribe
// service (protocol 7) over websockets.
//
// Only the websocket transports are implemented. A client dialed with both ws
// and wss enabled always uses wss; the HTTP fallback transports
// (xhr_streaming, xhr_polling, sockjs) may only appear in the disabled list.
//
//	c, err := pusher.Dial(ctx, appKey, pusher.Options{
//	    Cluster:            "eu",
//	    EnabledTransports:  []string{"ws", "wss"},
//	    DisabledTransports: []string{"xhr_streaming", "xhr_polling", "sockjs"},
//	})
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	sub := c.Events(ctx)
//	_ = c.Subscribe(ctx, "telegram")
//	for ev := range sub.C() {
//	    // ev.Channel, ev.Name, ev.Data
//	}
//
// Incoming events are fanned out to every Events subscription. A subscriber
// that does not keep up loses messages instead of stalling the connection.
package pusher
