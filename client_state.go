package gortspws

import (
	"github.com/bluenviron/gortspws/pkg/liberrors"
)

type clientState int

const (
	clientStateInitial clientState = iota
	clientStateOptions
	clientStateDescribe
	clientStateSetup
	clientStateStreams
	clientStateTeardown
)

var clientStateLabels = map[clientState]string{
	clientStateInitial:  "INITIAL",
	clientStateOptions:  "OPTIONS",
	clientStateDescribe: "DESCRIBE",
	clientStateSetup:    "SETUP",
	clientStateStreams:  "STREAMS",
	clientStateTeardown: "TEARDOWN",
}

func (s clientState) String() string {
	if l, ok := clientStateLabels[s]; ok {
		return l
	}
	return "unknown"
}

// every state can be torn down, and a teardown always ends in INITIAL.
var clientTransitions = map[clientState][]clientState{
	clientStateInitial:  {clientStateOptions, clientStateTeardown},
	clientStateOptions:  {clientStateDescribe, clientStateTeardown},
	clientStateDescribe: {clientStateSetup, clientStateTeardown},
	clientStateSetup:    {clientStateStreams, clientStateTeardown},
	clientStateStreams:  {clientStateTeardown},
	clientStateTeardown: {clientStateInitial},
}

// clientStateMachine holds the handshake state of a connection.
type clientStateMachine struct {
	state clientState
}

func (m *clientStateMachine) transition(to clientState) error {
	if m.state == to {
		return nil
	}

	for _, s := range clientTransitions[m.state] {
		if s == to {
			m.state = to
			return nil
		}
	}

	return liberrors.ErrClientNoSuchTransition{From: m.state, To: to}
}

type sessionState int

const (
	sessionStateIdle sessionState = iota
	sessionStatePlay
	sessionStatePlaying
	sessionStatePause
	sessionStatePaused
)

var sessionStateLabels = map[sessionState]string{
	sessionStateIdle:    "IDLE",
	sessionStatePlay:    "PLAY",
	sessionStatePlaying: "PLAYING",
	sessionStatePause:   "PAUSE",
	sessionStatePaused:  "PAUSED",
}

func (s sessionState) String() string {
	if l, ok := sessionStateLabels[s]; ok {
		return l
	}
	return "unknown"
}
