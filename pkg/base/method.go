// Package base contains the primitives of the RTSP protocol.
package base

// Method is the method of a RTSP request.
type Method string

// methods.
const (
	Describe     Method = "DESCRIBE"
	GetParameter Method = "GET_PARAMETER"
	Options      Method = "OPTIONS"
	Pause        Method = "PAUSE"
	Play         Method = "PLAY"
	Setup        Method = "SETUP"
	Teardown     Method = "TEARDOWN"
)

const rtspProtocol10 = "RTSP/1.0"
