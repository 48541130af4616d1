package gortspws

import (
	"time"

	"github.com/bluenviron/gortspws/pkg/base"
	"github.com/bluenviron/gortspws/pkg/headers"
)

// clientSession is a RTSP session, shared by the tracks that were set up
// with the same session ID.
type clientSession struct {
	c      *Client
	id     string
	state  sessionState
	tracks []*clientTrack

	keepalivePeriod time.Duration
	keepaliveTimer  *time.Timer
}

func newClientSession(c *Client, id string, timeout *uint) *clientSession {
	s := &clientSession{
		c:               c,
		id:              id,
		keepalivePeriod: c.KeepalivePeriod,
	}

	if timeout != nil && *timeout > 0 {
		s.keepalivePeriod = time.Duration(*timeout) * 500 * time.Millisecond
	}

	return s
}

func (s *clientSession) header() base.HeaderValue {
	return headers.Session{Session: s.id}.Marshal()
}

// playRange returns the start of the first track that advertises a range.
func (s *clientSession) playRange() *headers.Range {
	for _, ct := range s.tracks {
		if ct.media.Range != nil && ct.media.Range.Start >= 0 {
			return &headers.Range{Start: ct.media.Range.Start}
		}
	}
	return nil
}

func (s *clientSession) startKeepalive() {
	s.keepaliveTimer = time.AfterFunc(s.keepalivePeriod, func() {
		select {
		case s.c.keepalive <- s:
		case <-s.c.ctx.Done():
		}
	})
}

func (s *clientSession) stopKeepalive() {
	if s.keepaliveTimer != nil {
		s.keepaliveTimer.Stop()
		s.keepaliveTimer = nil
	}
}
