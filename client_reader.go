package gortspws

import (
	"github.com/bluenviron/gortspws/pkg/conn"
)

// clientReader reads responses and interleaved frames in a dedicated
// routine and hands them to the client routine.
type clientReader struct {
	conn *conn.Conn

	terminate chan struct{}
	done      chan struct{}

	// out
	what chan interface{}
	err  chan error
}

func newClientReader(cn *conn.Conn) *clientReader {
	r := &clientReader{
		conn:      cn,
		terminate: make(chan struct{}),
		done:      make(chan struct{}),
		what:      make(chan interface{}),
		err:       make(chan error),
	}

	go r.run()

	return r
}

// close stops the routine. The underlying connection must be closed first.
func (r *clientReader) close() {
	close(r.terminate)
	<-r.done
}

func (r *clientReader) run() {
	defer close(r.done)

	for {
		what, err := r.conn.Read()
		if err != nil {
			select {
			case r.err <- err:
			case <-r.terminate:
			}
			return
		}

		select {
		case r.what <- what:
		case <-r.terminate:
			return
		}
	}
}
