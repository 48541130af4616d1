package gortspws

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bluenviron/gortspws/pkg/url"
)

const (
	webSocketSubprotocol = "rtsp"
)

// wsReader exposes binary messages as a byte stream.
// A message can contain a response or one or more interleaved frames.
type wsReader struct {
	wc *websocket.Conn

	buf []byte
}

func (r *wsReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		var msgType int
		var err error
		msgType, r.buf, err = r.wc.ReadMessage()
		if err != nil {
			return 0, err
		}

		if msgType != websocket.BinaryMessage && msgType != websocket.TextMessage {
			return 0, fmt.Errorf("unexpected message type %v", msgType)
		}
	}

	n := copy(p, r.buf)
	r.buf = r.buf[n:]

	return n, nil
}

type wsWriter struct {
	wc *websocket.Conn

	mutex sync.Mutex
}

func (w *wsWriter) Write(p []byte) (int, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	err := w.wc.WriteMessage(websocket.BinaryMessage, p)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

type clientTunnelWebSocket struct {
	wconn *websocket.Conn
	r     io.Reader
	w     io.Writer
}

func (tu *clientTunnelWebSocket) Read(b []byte) (int, error) {
	return tu.r.Read(b)
}

func (tu *clientTunnelWebSocket) Write(b []byte) (int, error) {
	return tu.w.Write(b)
}

func (tu *clientTunnelWebSocket) Close() error {
	return tu.wconn.Close()
}

func (tu *clientTunnelWebSocket) LocalAddr() net.Addr {
	return tu.wconn.LocalAddr()
}

func (tu *clientTunnelWebSocket) RemoteAddr() net.Addr {
	return tu.wconn.RemoteAddr()
}

func (tu *clientTunnelWebSocket) SetDeadline(_ time.Time) error {
	return nil
}

func (tu *clientTunnelWebSocket) SetReadDeadline(t time.Time) error {
	return tu.wconn.SetReadDeadline(t)
}

func (tu *clientTunnelWebSocket) SetWriteDeadline(t time.Time) error {
	return tu.wconn.SetWriteDeadline(t)
}

func webSocketURL(u *url.URL, path string, secure bool) string {
	ur := "ws"
	if secure {
		ur = "wss"
	}

	host := u.Host
	if u.Port != url.DefaultPort(u.Protocol) {
		host += ":" + strconv.Itoa(u.Port)
	}

	return ur + "://" + host + path
}

func newClientTunnelWebSocket(
	ctx context.Context,
	dialContext func(ctx context.Context, network, address string) (net.Conn, error),
	u *url.URL,
	path string,
	tlsConfig *tls.Config,
) (net.Conn, error) {
	c := &clientTunnelWebSocket{}

	secure := u.Protocol == "wss"
	if secure && tlsConfig == nil {
		tlsConfig = &tls.Config{}
	}

	var err error
	c.wconn, _, err = (&websocket.Dialer{
		NetDialContext:  dialContext,
		TLSClientConfig: tlsConfig,
		Subprotocols:    []string{webSocketSubprotocol},
	}).DialContext(ctx, webSocketURL(u, path, secure), nil) //nolint:bodyclose
	if err != nil {
		return nil, err
	}

	if c.wconn.Subprotocol() != webSocketSubprotocol {
		c.wconn.Close()
		return nil, fmt.Errorf("server did not accept the '%s' subprotocol", webSocketSubprotocol)
	}

	c.r = &wsReader{wc: c.wconn}
	c.w = &wsWriter{wc: c.wconn}

	return c, nil
}
