package session

import "github.com/qcom/litelist/internal/models"

// Session is a copy of the authentication state at one point in time.
// User is non-nil exactly when Authenticated is true.
type Session struct {
	Authenticated bool
	User          *models.User
	Token         string
}

// state is owned by Controller and only touched with Controller.mu held.
type state struct {
	session Session
	// generation changes on every login and logout. Results of requests
	// issued under an older generation are dropped.
	generation uint64
	renewal    *Handle
}

func (s *state) snapshot() Session {
	out := s.session
	if out.User != nil {
		user := *out.User
		out.User = &user
	}
	return out
}
