/*
Package gortspws is a RTSP client that reads streams tunneled over WebSocket
(or plain TCP), depacketizes H264 and AAC and remuxes them into fragmented MP4.

Examples are available at https://github.com/bluenviron/gortspws/tree/main/examples
*/
package gortspws

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"

	"github.com/bluenviron/gortspws/pkg/auth"
	"github.com/bluenviron/gortspws/pkg/base"
	"github.com/bluenviron/gortspws/pkg/conn"
	"github.com/bluenviron/gortspws/pkg/fmp4"
	"github.com/bluenviron/gortspws/pkg/headers"
	"github.com/bluenviron/gortspws/pkg/liberrors"
	"github.com/bluenviron/gortspws/pkg/remux"
	"github.com/bluenviron/gortspws/pkg/sdp"
	"github.com/bluenviron/gortspws/pkg/url"
)

func emptyTimer() *time.Timer {
	t := time.NewTimer(0)
	<-t.C
	return t
}

func joinURL(base string, control string) string {
	if strings.HasSuffix(base, "/") {
		return base + control
	}
	return base + "/" + control
}

// errReconnect is returned when the connection must be established again.
type errReconnect struct {
	err   error
	delay bool
}

func (e errReconnect) Error() string {
	return e.err.Error()
}

func (e errReconnect) Unwrap() error {
	return e.err
}

type playReq struct {
	res chan error
}

type pauseReq struct {
	res chan error
}

// ClientOnPacketRTPCtx is the context of a RTP packet.
type ClientOnPacketRTPCtx struct {
	Track  *Track
	Packet *rtp.Packet
}

// ClientOnPacketRTCPCtx is the context of a RTCP packet.
type ClientOnPacketRTCPCtx struct {
	Track  *Track
	Packet rtcp.Packet
}

// Client is a RTSP client.
type Client struct {
	//
	// RTSP parameters (all optional)
	//
	// timeout of read operations and of requests.
	// It defaults to 10 seconds.
	ReadTimeout time.Duration
	// timeout of write operations.
	// It defaults to 10 seconds.
	WriteTimeout time.Duration
	// a TLS configuration to connect to wss servers.
	// It defaults to nil.
	TLSConfig *tls.Config
	// tunneling method.
	// If nil, it is chosen from the URL scheme (ws and wss use WebSocket).
	// It defaults to nil.
	Tunnel *Tunnel
	// path of the WebSocket endpoint.
	// It defaults to "/ws" followed by the stream path.
	WebSocketPath string
	// user agent header.
	// It defaults to "gortspws".
	UserAgent string
	// period between fragments.
	// It defaults to 200 milliseconds.
	FlushPeriod time.Duration
	// delay before reconnecting after the connection is lost.
	// It defaults to 3 seconds.
	ReconnectPeriod time.Duration
	// period of keepalive requests, when the server doesn't provide a session timeout.
	// It defaults to 30 seconds.
	KeepalivePeriod time.Duration
	// destination of fragmented MP4 segments.
	// If nil, packets are depacketized but not remuxed.
	Sink remux.Sink

	//
	// system functions (all optional)
	//
	// function used to initialize the TCP client.
	// It defaults to (&net.Dialer{}).DialContext.
	DialContext func(ctx context.Context, network, address string) (net.Conn, error)

	//
	// callbacks (all optional)
	//
	// called when there's a message to log.
	OnLog func(level LogLevel, format string, args ...interface{})
	// called before every request.
	OnRequest func(*base.Request)
	// called after every response.
	OnResponse func(*base.Response)
	// called when all tracks have been set up.
	OnTracks func([]*Track)
	// called when receiving a RTP packet.
	OnPacketRTP func(*ClientOnPacketRTPCtx)
	// called when receiving a RTCP packet.
	OnPacketRTCP func(*ClientOnPacketRTCPCtx)
	// called when there's a non-fatal decoding error of RTP or RTCP packets.
	OnDecodeError func(error)
	// called when the server requires credentials and the URL doesn't contain them.
	OnCredentials func() (user string, pass string, ok bool)

	//
	// private
	//

	u           *url.URL
	requestURL  string
	ctx         context.Context
	ctxCancel   func()
	sm          clientStateMachine
	nconn       net.Conn
	conn        *conn.Conn
	reader      *clientReader
	cseq        int
	public      headers.Public
	user        string
	pass        string
	sender      *auth.Sender
	contentBase string
	sdp         *sdp.SessionDescription
	interleave  int
	tracks      []*clientTrack
	byChannel   map[int]*clientTrack
	sessions    map[string]*clientSession
	sessionList []*clientSession
	lastSession *clientSession
	trackIDs    remux.TrackIDAllocator
	muxer       *remux.Muxer
	paused      bool
	streamed    bool
	flushTimer  *time.Timer
	closeError  error

	// in
	play      chan playReq
	pause     chan pauseReq
	keepalive chan *clientSession

	// out
	done chan struct{}
}

// Start connects to a stream and starts reading it.
// Supported schemes are rtsp, ws and wss.
func (c *Client) Start(address string) error {
	u, err := url.Parse(address)
	if err != nil {
		return err
	}

	switch u.Protocol {
	case "rtsp", "ws", "wss":
	default:
		return fmt.Errorf("unsupported scheme '%s'", u.Protocol)
	}

	// RTSP parameters
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.Tunnel == nil {
		v := tunnelFromProtocol(u.Protocol)
		c.Tunnel = &v
	}
	if c.WebSocketPath == "" {
		c.WebSocketPath = "/ws" + u.URLPath
	}
	if c.UserAgent == "" {
		c.UserAgent = "gortspws"
	}
	if c.FlushPeriod == 0 {
		c.FlushPeriod = 200 * time.Millisecond
	}
	if c.ReconnectPeriod == 0 {
		c.ReconnectPeriod = 3 * time.Second
	}
	if c.KeepalivePeriod == 0 {
		c.KeepalivePeriod = 30 * time.Second
	}

	// system functions
	if c.DialContext == nil {
		c.DialContext = (&net.Dialer{}).DialContext
	}

	// callbacks
	if c.OnLog == nil {
		c.OnLog = func(LogLevel, string, ...interface{}) {
		}
	}
	if c.OnRequest == nil {
		c.OnRequest = func(*base.Request) {
		}
	}
	if c.OnResponse == nil {
		c.OnResponse = func(*base.Response) {
		}
	}
	if c.OnTracks == nil {
		c.OnTracks = func([]*Track) {
		}
	}
	if c.OnPacketRTP == nil {
		c.OnPacketRTP = func(*ClientOnPacketRTPCtx) {
		}
	}
	if c.OnPacketRTCP == nil {
		c.OnPacketRTCP = func(*ClientOnPacketRTCPCtx) {
		}
	}
	if c.OnDecodeError == nil {
		c.OnDecodeError = func(error) {
		}
	}
	if c.OnCredentials == nil {
		c.OnCredentials = func() (string, string, bool) {
			return "", "", false
		}
	}

	ctx, ctxCancel := context.WithCancel(context.Background())

	c.u = u
	// requests always carry a rtsp URL, even when tunneled
	c.requestURL = "rtsp://" + u.Location + u.URLPath
	c.user = u.User
	c.pass = u.Pass
	c.ctx = ctx
	c.ctxCancel = ctxCancel
	c.byChannel = make(map[int]*clientTrack)
	c.sessions = make(map[string]*clientSession)
	c.flushTimer = emptyTimer()
	c.play = make(chan playReq)
	c.pause = make(chan pauseReq)
	c.keepalive = make(chan *clientSession)
	c.done = make(chan struct{})

	if c.Sink != nil {
		c.muxer = &remux.Muxer{Sink: c.Sink}
		c.muxer.Initialize()
	}

	go c.run()

	return nil
}

// Close closes all client resources and waits for them to close.
func (c *Client) Close() error {
	c.ctxCancel()
	<-c.done
	return c.closeError
}

// Wait waits until all client resources are closed.
// This can happen when a fatal error occurs or when Close() is called.
func (c *Client) Wait() error {
	<-c.done
	return c.closeError
}

// Play resumes a paused stream.
func (c *Client) Play() error {
	cres := make(chan error)
	select {
	case c.play <- playReq{res: cres}:
		return <-cres

	case <-c.ctx.Done():
		return liberrors.ErrClientTerminated{}
	}
}

// Pause pauses the stream.
func (c *Client) Pause() error {
	cres := make(chan error)
	select {
	case c.pause <- pauseReq{res: cres}:
		return <-cres

	case <-c.ctx.Done():
		return liberrors.ErrClientTerminated{}
	}
}

func (c *Client) run() {
	defer close(c.done)

	c.closeError = c.runInner()

	c.ctxCancel()

	c.reset()
}

func (c *Client) runInner() error {
	for {
		err := c.runConn()

		var rerr errReconnect
		if !errors.As(err, &rerr) {
			return err
		}

		// connection errors are fatal until the stream has been read once
		if !c.streamed {
			return rerr.err
		}

		c.OnLog(LogLevelWarn, "connection lost: %v", rerr.err)
		c.reset()

		if rerr.delay {
			err = c.waitReconnect()
			if err != nil {
				return err
			}
		}

		c.OnLog(LogLevelInfo, "reconnecting")
	}
}

func (c *Client) waitReconnect() error {
	t := time.NewTimer(c.ReconnectPeriod)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			return nil

		case req := <-c.play:
			req.res <- c.doPlay()

		case req := <-c.pause:
			req.res <- c.doPause()

		case <-c.keepalive:

		case <-c.ctx.Done():
			return liberrors.ErrClientTerminated{}
		}
	}
}

func (c *Client) runConn() error {
	err := c.connOpen()
	if err != nil {
		return errReconnect{err: err, delay: true}
	}

	err = c.doOptions()
	if err != nil {
		return err
	}

	err = c.doDescribe()
	if err != nil {
		return err
	}

	err = c.doSetupAll()
	if err != nil {
		return err
	}

	err = c.doPlayAll()
	if err != nil {
		return err
	}

	c.streamed = true

	return c.runStreams()
}

func (c *Client) runStreams() error {
	for {
		select {
		case req := <-c.play:
			req.res <- c.doPlay()

		case req := <-c.pause:
			req.res <- c.doPause()

		case s := <-c.keepalive:
			if c.sessions[s.id] != s {
				continue
			}

			err := c.doKeepalive(s)
			if err != nil {
				return errReconnect{err: fmt.Errorf("keepalive failed: %w", err)}
			}

			s.startKeepalive()

		case <-c.flushTimer.C:
			err := c.flush()
			if err != nil {
				return err
			}

			c.flushTimer = time.NewTimer(c.FlushPeriod)

		case what := <-c.reader.what:
			c.handleRead(what)

		case err := <-c.reader.err:
			return errReconnect{err: err, delay: true}

		case <-c.ctx.Done():
			return liberrors.ErrClientTerminated{}
		}
	}
}

func (c *Client) transition(to clientState) error {
	from := c.sm.state

	err := c.sm.transition(to)
	if err != nil {
		return err
	}

	if from != to {
		c.OnLog(LogLevelDebug, "state %v -> %v", from, to)
	}
	return nil
}

func (c *Client) checkState(allowed ...clientState) error {
	for _, s := range allowed {
		if c.sm.state == s {
			return nil
		}
	}

	allowedList := make([]fmt.Stringer, len(allowed))
	for i, s := range allowed {
		allowedList[i] = s
	}

	return liberrors.ErrClientInvalidState{AllowedList: allowedList, State: c.sm.state}
}

// doClose tears down sessions and closes the connection.
func (c *Client) doClose() {
	if c.nconn != nil {
		for _, s := range c.sessionList {
			c.do(&base.Request{ //nolint:errcheck
				Method: base.Teardown,
				URI:    c.contentBase,
				Header: base.Header{
					"Session": s.header(),
				},
			}, true)
		}

		c.nconn.Close()
		c.reader.close()
		c.nconn = nil
		c.conn = nil
		c.reader = nil
	}

	for _, s := range c.sessionList {
		s.stopKeepalive()
	}

	c.flushTimer.Stop()
	c.flushTimer = emptyTimer()
}

// reset drops all the state of the connection and brings the client back to INITIAL.
func (c *Client) reset() {
	c.doClose()

	c.transition(clientStateTeardown) //nolint:errcheck
	c.transition(clientStateInitial)  //nolint:errcheck

	c.cseq = 0
	c.public = nil
	c.sender = nil
	c.contentBase = ""
	c.sdp = nil
	c.interleave = 0
	c.tracks = nil
	c.byChannel = make(map[int]*clientTrack)
	c.sessions = make(map[string]*clientSession)
	c.sessionList = nil
	c.lastSession = nil
	c.paused = false

	if c.muxer != nil {
		c.muxer.Reset()
	}
}

func (c *Client) connOpen() error {
	ctx, cancel := context.WithTimeout(c.ctx, c.ReadTimeout)
	defer cancel()

	var nconn net.Conn
	var err error

	if *c.Tunnel == TunnelWebSocket {
		nconn, err = newClientTunnelWebSocket(ctx, c.DialContext, c.u, c.WebSocketPath, c.TLSConfig)
	} else {
		nconn, err = c.DialContext(ctx, "tcp", c.u.Location)
	}
	if err != nil {
		return err
	}

	c.OnLog(LogLevelDebug, "connected to %v (tunnel: %v)", nconn.RemoteAddr(), *c.Tunnel)

	c.nconn = nconn
	c.conn = conn.NewConn(nconn)
	c.reader = newClientReader(c.conn)
	return nil
}

func (c *Client) handleRead(what interface{}) {
	switch what := what.(type) {
	case *base.InterleavedFrame:
		c.readFrame(what)

	case *base.Response:
		c.OnLog(LogLevelDebug, "unexpected response: %d %s", what.StatusCode, what.StatusMessage)

	case *base.Request:
		c.OnLog(LogLevelDebug, "ignoring request from server: %s", what.Method)
	}
}

func (c *Client) readFrame(fr *base.InterleavedFrame) {
	if (fr.Channel % 2) != 0 {
		ct, ok := c.byChannel[fr.Channel-1]
		if !ok {
			return
		}

		pkts, err := rtcp.Unmarshal(fr.Payload)
		if err != nil {
			c.OnDecodeError(err)
			return
		}

		for _, pkt := range pkts {
			c.OnPacketRTCP(&ClientOnPacketRTCPCtx{
				Track:  ct.track,
				Packet: pkt,
			})
		}
		return
	}

	ct, ok := c.byChannel[fr.Channel]
	if !ok {
		return
	}

	var pkt rtp.Packet
	err := pkt.Unmarshal(fr.Payload)
	if err != nil {
		c.OnDecodeError(err)
		return
	}

	if c.sdp.MediaByPayloadType(int(pkt.PayloadType)) == nil {
		c.OnLog(LogLevelDebug, "RTP packet with unknown payload type %d", pkt.PayloadType)
		return
	}

	c.OnPacketRTP(&ClientOnPacketRTPCtx{
		Track:  ct.track,
		Packet: &pkt,
	})

	if c.paused {
		return
	}

	ct.readRTP(&pkt)
}

func (c *Client) flush() error {
	err := c.muxer.Flush()
	if err == nil {
		return nil
	}

	var serr remux.SinkError
	if errors.As(err, &serr) && serr.Type == fmp4.TrackTypeAudio {
		c.OnLog(LogLevelWarn, "%v, removing track", err)
		c.muxer.RemoveTrack(fmp4.TrackTypeAudio)
		return nil
	}

	return liberrors.ErrClientSinkFailed{Err: err}
}

func (c *Client) do(req *base.Request, skipResponse bool) (*base.Response, error) {
	res, err := c.doOnce(req, skipResponse)
	if err != nil || skipResponse {
		return res, err
	}

	if res.StatusCode != base.StatusUnauthorized {
		return res, nil
	}

	if c.user == "" {
		var ok bool
		c.user, c.pass, ok = c.OnCredentials()
		if !ok {
			return nil, liberrors.ErrClientNoCredentials{}
		}
	}

	sender := &auth.Sender{
		WWWAuth: res.Header.Values("WWW-Authenticate"),
		User:    c.user,
		Pass:    c.pass,
	}
	err = sender.Initialize()
	if err != nil {
		return nil, liberrors.ErrClientAuthSetup{Err: err}
	}
	c.sender = sender

	res, err = c.doOnce(req, false)
	if err != nil {
		return nil, err
	}

	if res.StatusCode == base.StatusUnauthorized {
		return nil, liberrors.ErrClientAuthFailed{}
	}

	return res, nil
}

func (c *Client) doOnce(req *base.Request, skipResponse bool) (*base.Response, error) {
	if req.Header == nil {
		req.Header = make(base.Header)
	}

	c.cseq++
	req.Header["CSeq"] = base.HeaderValue{strconv.FormatInt(int64(c.cseq), 10)}

	req.Header["User-Agent"] = base.HeaderValue{c.UserAgent}

	if c.sender != nil {
		c.sender.AddAuthorization(req)
	}

	c.OnRequest(req)

	c.nconn.SetWriteDeadline(time.Now().Add(c.WriteTimeout))
	err := c.conn.WriteRequest(req)
	if err != nil {
		return nil, errReconnect{err: err, delay: true}
	}

	if skipResponse {
		return nil, nil
	}

	t := time.NewTimer(c.ReadTimeout)
	defer t.Stop()

	for {
		select {
		case what := <-c.reader.what:
			res, ok := what.(*base.Response)
			if !ok {
				c.handleRead(what)
				continue
			}

			if cseq := res.Header.Get("CSeq"); cseq != "" && cseq != req.Header["CSeq"][0] {
				c.OnLog(LogLevelDebug, "discarding response with CSeq %s", cseq)
				continue
			}

			c.OnResponse(res)
			return res, nil

		case err := <-c.reader.err:
			return nil, errReconnect{err: err, delay: true}

		case <-t.C:
			return nil, errReconnect{err: liberrors.ErrClientRequestTimedOut{}, delay: true}

		case <-c.ctx.Done():
			return nil, liberrors.ErrClientTerminated{}
		}
	}
}

func (c *Client) doOptions() error {
	err := c.transition(clientStateOptions)
	if err != nil {
		return err
	}

	res, err := c.do(&base.Request{
		Method: base.Options,
		URI:    "*",
	}, false)
	if err != nil {
		return err
	}

	if res.StatusCode != base.StatusOK {
		// since this method is not implemented by every RTSP server,
		// return only if status code is not 404
		if res.StatusCode == base.StatusNotFound {
			return nil
		}
		return liberrors.ErrClientBadStatusCode{Code: res.StatusCode, Message: res.StatusMessage}
	}

	c.public.Unmarshal(res.Header.Values("Public"))

	return nil
}

func (c *Client) doDescribe() error {
	err := c.transition(clientStateDescribe)
	if err != nil {
		return err
	}

	res, err := c.do(&base.Request{
		Method: base.Describe,
		URI:    c.requestURL,
		Header: base.Header{
			"Accept": base.HeaderValue{"application/sdp"},
		},
	}, false)
	if err != nil {
		return err
	}

	if res.StatusCode != base.StatusOK {
		return liberrors.ErrClientBadStatusCode{Code: res.StatusCode, Message: res.StatusMessage}
	}

	if ct := res.Header.Get("Content-Type"); ct != "" &&
		strings.TrimSpace(strings.Split(ct, ";")[0]) != "application/sdp" {
		return liberrors.ErrClientContentTypeUnsupported{CT: ct}
	}

	var sd sdp.SessionDescription
	err = sd.Unmarshal(res.Body)
	if err != nil {
		return liberrors.ErrClientSDPInvalid{Err: err}
	}

	for _, line := range sd.IgnoredLines {
		c.OnLog(LogLevelDebug, "ignored SDP line '%s'", line)
	}

	supported := false
	for _, typ := range sd.MediaTypes() {
		if sd.Media(typ).PayloadType() != sdp.PayloadTypeUnknown {
			supported = true
		}
	}
	if !supported {
		return liberrors.ErrClientNoTracks{}
	}

	c.sdp = &sd

	c.contentBase = res.Header.Get("Content-Base")
	if c.contentBase == "" {
		c.contentBase = c.requestURL
	}

	return nil
}

func (c *Client) setupURL(control string) string {
	if control == "" || control == "*" {
		return c.contentBase
	}

	// session-level attributes are not kept by the SDP decoder,
	// therefore there's no session control to prepend.
	if url.IsAbsolute(control) {
		return control
	}

	if c.contentBase != "" {
		return joinURL(c.contentBase, control)
	}

	return control
}

func (c *Client) doSetupAll() error {
	err := c.transition(clientStateSetup)
	if err != nil {
		return err
	}

	for _, typ := range c.sdp.MediaTypes() {
		md := c.sdp.Media(typ)

		if md.PayloadType() == sdp.PayloadTypeUnknown {
			c.OnLog(LogLevelInfo, "skipping %s track: unsupported codec", typ)
			continue
		}

		ct, err := newClientTrack(c, md)
		if err != nil {
			c.OnLog(LogLevelWarn, "skipping %s track: %v", typ, err)
			continue
		}

		err = c.doSetup(ct)
		if err != nil {
			return err
		}
	}

	if len(c.tracks) == 0 {
		return liberrors.ErrClientNoTracks{}
	}

	return nil
}

func (c *Client) doSetup(ct *clientTrack) error {
	ct.track.URL = c.setupURL(ct.media.Control)

	ids := [2]int{c.interleave, c.interleave + 1}
	c.interleave += 2

	header := base.Header{
		"Transport": headers.Transport{InterleavedIDs: &ids}.Marshal(),
		"Date":      base.HeaderValue{time.Now().UTC().Format(http.TimeFormat)},
	}

	if c.lastSession != nil {
		header["Session"] = c.lastSession.header()
	}

	res, err := c.do(&base.Request{
		Method: base.Setup,
		URI:    ct.track.URL,
		Header: header,
	}, false)
	if err != nil {
		return err
	}

	if res.StatusCode != base.StatusOK {
		return liberrors.ErrClientBadStatusCode{Code: res.StatusCode, Message: res.StatusMessage}
	}

	var th headers.Transport
	err = th.Unmarshal(res.Header.Values("Transport"))
	if err != nil {
		return liberrors.ErrClientTransportHeaderInvalid{Err: err}
	}

	if th.InterleavedIDs == nil {
		return liberrors.ErrClientTransportHeaderNoInterleavedIDs{}
	}

	if (th.InterleavedIDs[0]%2) != 0 || th.InterleavedIDs[1] != th.InterleavedIDs[0]+1 {
		return liberrors.ErrClientTransportHeaderInvalidInterleavedIDs{}
	}

	var sx headers.Session
	err = sx.Unmarshal(res.Header.Values("Session"))
	if err != nil {
		return liberrors.ErrClientSessionHeaderInvalid{Err: err}
	}

	s, ok := c.sessions[sx.Session]
	if !ok {
		s = newClientSession(c, sx.Session, sx.Timeout)
		c.sessions[sx.Session] = s
		c.sessionList = append(c.sessionList, s)
		s.startKeepalive()
	}

	ct.session = s
	ct.channel = th.InterleavedIDs[0]
	s.tracks = append(s.tracks, ct)
	c.lastSession = s
	c.tracks = append(c.tracks, ct)
	c.byChannel[ct.channel] = ct

	if c.muxer != nil && ct.remuxer != nil {
		c.muxer.AddTrack(ct.track.Type, ct.remuxer)
	}

	c.OnLog(LogLevelDebug, "%v track set up on channel %d, session %s", ct.track.Type, ct.channel, s.id)

	return nil
}

func (c *Client) doPlayAll() error {
	err := c.transition(clientStateStreams)
	if err != nil {
		return err
	}

	tracks := make([]*Track, len(c.tracks))
	for i, ct := range c.tracks {
		tracks[i] = ct.track
	}
	c.OnTracks(tracks)

	for _, s := range c.sessionList {
		err := c.doPlaySession(s, s.playRange())
		if err != nil {
			return err
		}
	}

	if c.muxer != nil {
		c.flushTimer = time.NewTimer(c.FlushPeriod)
	}

	return nil
}

func (c *Client) doPlaySession(s *clientSession, ra *headers.Range) error {
	header := base.Header{
		"Session": s.header(),
	}

	if ra != nil {
		header["Range"] = ra.Marshal()
	}

	s.state = sessionStatePlay

	res, err := c.do(&base.Request{
		Method: base.Play,
		URI:    c.contentBase,
		Header: header,
	}, false)
	if err != nil {
		return err
	}

	if res.StatusCode != base.StatusOK {
		return liberrors.ErrClientBadStatusCode{Code: res.StatusCode, Message: res.StatusMessage}
	}

	s.state = sessionStatePlaying
	return nil
}

func (c *Client) doPause() error {
	err := c.checkState(clientStateStreams)
	if err != nil {
		return err
	}

	if c.paused {
		return nil
	}

	if c.public.Has(base.Pause) {
		for _, s := range c.sessionList {
			if s.state != sessionStatePlaying {
				continue
			}

			s.state = sessionStatePause

			res, err := c.do(&base.Request{
				Method: base.Pause,
				URI:    c.contentBase,
				Header: base.Header{
					"Session": s.header(),
				},
			}, false)
			if err != nil {
				return err
			}

			if res.StatusCode != base.StatusOK {
				return liberrors.ErrClientBadStatusCode{Code: res.StatusCode, Message: res.StatusMessage}
			}

			s.state = sessionStatePaused
		}
	}

	c.paused = true
	c.flushTimer.Stop()
	c.flushTimer = emptyTimer()

	return nil
}

func (c *Client) doPlay() error {
	err := c.checkState(clientStateStreams)
	if err != nil {
		return err
	}

	if !c.paused {
		return nil
	}

	for _, s := range c.sessionList {
		if s.state != sessionStatePaused {
			continue
		}

		err := c.doPlaySession(s, nil)
		if err != nil {
			return err
		}
	}

	c.paused = false

	if c.muxer != nil {
		if c.muxer.Initialized() {
			c.muxer.InsertDiscontinuity()
		}
		c.flushTimer = time.NewTimer(c.FlushPeriod)
	}

	return nil
}

func (c *Client) doKeepalive(s *clientSession) error {
	req := &base.Request{
		Method: base.Options,
		URI:    "*",
		Header: base.Header{
			"Session": s.header(),
		},
	}

	// some servers require GET_PARAMETER
	if c.public.Has(base.GetParameter) {
		req.Method = base.GetParameter
		req.URI = c.contentBase
	}

	res, err := c.do(req, false)
	if err != nil {
		return err
	}

	if res.StatusCode != base.StatusOK && res.StatusCode != base.StatusNotImplemented {
		return liberrors.ErrClientBadStatusCode{Code: res.StatusCode, Message: res.StatusMessage}
	}

	return nil
}
