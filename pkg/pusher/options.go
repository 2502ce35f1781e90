package pusher

import (
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"time"
)

// Transport names understood by the service.
const (
	TransportWS           = "ws"
	TransportWSS          = "wss"
	TransportXHRStreaming = "xhr_streaming"
	TransportXHRPolling   = "xhr_polling"
	TransportSockJS       = "sockjs"
)

const (
	protocolVersion = "7"
	clientName      = "ppp-go"
	clientVersion   = "1.0.0"
	defaultCluster  = "mt1"
)

// Options configures Dial.
type Options struct {
	// Cluster selects the ws-<cluster>.pusher.com endpoint.
	Cluster string
	// Host overrides the endpoint host (host[:port]).
	Host string
	// EnabledTransports defaults to ws and wss.
	EnabledTransports []string
	// DisabledTransports take precedence over enabled ones.
	DisabledTransports []string
	// HandshakeTimeout bounds the websocket upgrade and the connection_established wait.
	HandshakeTimeout time.Duration
	// EventBuffer is the per-subscriber buffer size of Events.
	EventBuffer int
	Logger      *slog.Logger
}

func (o *Options) setDefaults() {
	if o.Cluster == "" {
		o.Cluster = defaultCluster
	}
	if len(o.EnabledTransports) == 0 {
		o.EnabledTransports = []string{TransportWS, TransportWSS}
	}
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = 10 * time.Second
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = 64
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
}

// scheme picks the websocket scheme from the transport lists.
func (o *Options) scheme() (string, error) {
	for _, t := range o.EnabledTransports {
		switch t {
		case TransportWS, TransportWSS:
		default:
			return "", fmt.Errorf("%w: %q", ErrUnsupportedTransport, t)
		}
	}
	for _, t := range o.DisabledTransports {
		switch t {
		case TransportWS, TransportWSS, TransportXHRStreaming, TransportXHRPolling, TransportSockJS:
		default:
			return "", fmt.Errorf("%w: %q", ErrUnsupportedTransport, t)
		}
	}

	usable := func(t string) bool {
		return slices.Contains(o.EnabledTransports, t) && !slices.Contains(o.DisabledTransports, t)
	}
	switch {
	case usable(TransportWSS):
		return "wss", nil
	case usable(TransportWS):
		return "ws", nil
	default:
		return "", ErrNoTransport
	}
}

func (o *Options) endpoint(key string) (string, error) {
	scheme, err := o.scheme()
	if err != nil {
		return "", err
	}

	host := o.Host
	if host == "" {
		host = "ws-" + o.Cluster + ".pusher.com"
	}

	q := url.Values{}
	q.Set("protocol", protocolVersion)
	q.Set("client", clientName)
	q.Set("version", clientVersion)
	q.Set("flash", "false")

	u := url.URL{Scheme: scheme, Host: host, Path: "/app/" + key, RawQuery: q.Encode()}
	return u.String(), nil
}
