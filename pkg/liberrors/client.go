// Package liberrors contains errors returned by the library.
package liberrors

import (
	"fmt"

	"github.com/bluenviron/gortspws/pkg/base"
)

// ErrClientTerminated is an error that can be returned by a client.
type ErrClientTerminated struct{}

// Error implements the error interface.
func (e ErrClientTerminated) Error() string {
	return "terminated"
}

// ErrClientInvalidState is returned in case of an invalid state.
type ErrClientInvalidState struct {
	AllowedList []fmt.Stringer
	State       fmt.Stringer
}

// Error implements the error interface.
func (e ErrClientInvalidState) Error() string {
	return fmt.Sprintf("must be in state %v, while is in state %v",
		e.AllowedList, e.State)
}

// ErrClientNoSuchTransition is returned when a state transition is not allowed.
type ErrClientNoSuchTransition struct {
	From fmt.Stringer
	To   fmt.Stringer
}

// Error implements the error interface.
func (e ErrClientNoSuchTransition) Error() string {
	return fmt.Sprintf("no such transition: %v to %v", e.From, e.To)
}

// ErrClientBadStatusCode is returned in case of a bad status code.
type ErrClientBadStatusCode struct {
	Code    base.StatusCode
	Message string
}

// Error implements the error interface.
func (e ErrClientBadStatusCode) Error() string {
	return fmt.Sprintf("bad status code: %d (%s)", e.Code, e.Message)
}

// ErrClientContentTypeUnsupported is returned in case the Content-Type header is unsupported.
type ErrClientContentTypeUnsupported struct {
	CT string
}

// Error implements the error interface.
func (e ErrClientContentTypeUnsupported) Error() string {
	return fmt.Sprintf("unsupported Content-Type header '%v'", e.CT)
}

// ErrClientSDPInvalid is returned in case of an invalid SDP.
type ErrClientSDPInvalid struct {
	Err error
}

// Error implements the error interface.
func (e ErrClientSDPInvalid) Error() string {
	return fmt.Sprintf("failed to parse SDP: %v", e.Err)
}

// ErrClientNoTracks is returned when the SDP does not contain any supported track.
type ErrClientNoTracks struct{}

// Error implements the error interface.
func (e ErrClientNoTracks) Error() string {
	return "no tracks in SDP"
}

// ErrClientAuthSetup is returned when the authentication setup fails.
type ErrClientAuthSetup struct {
	Err error
}

// Error implements the error interface.
func (e ErrClientAuthSetup) Error() string {
	return fmt.Sprintf("unable to setup authentication: %v", e.Err)
}

// ErrClientAuthFailed is returned when the server rejects credentials.
type ErrClientAuthFailed struct{}

// Error implements the error interface.
func (e ErrClientAuthFailed) Error() string {
	return "authentication failed"
}

// ErrClientNoCredentials is returned when the server requires credentials
// and none are available.
type ErrClientNoCredentials struct{}

// Error implements the error interface.
func (e ErrClientNoCredentials) Error() string {
	return "server requires credentials"
}

// ErrClientSessionHeaderInvalid is returned in case of an invalid session header.
type ErrClientSessionHeaderInvalid struct {
	Err error
}

// Error implements the error interface.
func (e ErrClientSessionHeaderInvalid) Error() string {
	return fmt.Sprintf("invalid session header: %v", e.Err)
}

// ErrClientTransportHeaderInvalid is returned in case the transport header of the server is invalid.
type ErrClientTransportHeaderInvalid struct {
	Err error
}

// Error implements the error interface.
func (e ErrClientTransportHeaderInvalid) Error() string {
	return fmt.Sprintf("invalid transport header: %v", e.Err)
}

// ErrClientTransportHeaderNoInterleavedIDs is returned in case the transport header doesn't contain interleaved IDs.
type ErrClientTransportHeaderNoInterleavedIDs struct{}

// Error implements the error interface.
func (e ErrClientTransportHeaderNoInterleavedIDs) Error() string {
	return "transport header does not contain interleaved IDs"
}

// ErrClientTransportHeaderInvalidInterleavedIDs is returned in case the server returned odd interleaved IDs.
type ErrClientTransportHeaderInvalidInterleavedIDs struct{}

// Error implements the error interface.
func (e ErrClientTransportHeaderInvalidInterleavedIDs) Error() string {
	return "invalid interleaved IDs"
}

// ErrClientRequestTimedOut is returned when a response doesn't arrive in time.
type ErrClientRequestTimedOut struct{}

// Error implements the error interface.
func (e ErrClientRequestTimedOut) Error() string {
	return "request timed out"
}

// ErrClientSinkFailed is returned when the media sink rejects a segment.
type ErrClientSinkFailed struct {
	Err error
}

// Error implements the error interface.
func (e ErrClientSinkFailed) Error() string {
	return fmt.Sprintf("sink failed: %v", e.Err)
}
