package session

import "errors"

var (
	// ErrInvalidCredentials is shown to the user as a correctable login error.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrServerUnavailable covers 5xx responses and transport failures.
	ErrServerUnavailable = errors.New("server error, try again later")
	// ErrRenewalFailed is never shown; the session has already been logged out
	// by the time it is returned.
	ErrRenewalFailed = errors.New("token renewal failed")
	// ErrClosed is returned by Login once the controller has been closed.
	ErrClosed = errors.New("session controller closed")
)

// Reasons a recovery attempt left the session logged out. They are logged and
// counted, never returned to callers.
var (
	errNoStoredSession = errors.New("no stored session")
	errSessionStale    = errors.New("stored session too close to expiry")
	errProfileRejected = errors.New("stored session rejected by profile endpoint")
	errSuperseded      = errors.New("session changed while request was in flight")
)
