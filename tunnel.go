package gortspws

// Tunnel is a tunneling method.
type Tunnel int

// tunneling methods.
const (
	// RTSP over plain TCP.
	TunnelNone Tunnel = iota

	// RTSP over WebSocket, with the "rtsp" subprotocol.
	TunnelWebSocket
)

var tunnelLabels = map[Tunnel]string{
	TunnelNone:      "none",
	TunnelWebSocket: "WebSocket",
}

// String implements fmt.Stringer.
func (t Tunnel) String() string {
	if l, ok := tunnelLabels[t]; ok {
		return l
	}
	return "unknown"
}

func tunnelFromProtocol(protocol string) Tunnel {
	switch protocol {
	case "ws", "wss":
		return TunnelWebSocket
	}
	return TunnelNone
}
