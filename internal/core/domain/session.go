package domain

// SessionState is the snapshot consumers read from a session store.
//
// Loading is true only until the first identity check completes. Counter
// increases on every successful login or logout and is meant as a cheap
// change signal, not for correctness.
type SessionState struct {
	Identity *Identity `json:"identity"`
	Loading  bool      `json:"loading"`
	Counter  uint64    `json:"session"`
}

// Authenticated reports whether the state carries an identity.
func (s SessionState) Authenticated() bool {
	return !s.Loading && s.Identity != nil
}

// TransitionKind names what changed a session state.
type TransitionKind string

const (
	TransitionInitialized TransitionKind = "initialized"
	TransitionLogin       TransitionKind = "login"
	TransitionLogout      TransitionKind = "logout"
)

// SessionChange is published after every state transition.
type SessionChange struct {
	SessionID string
	Kind      TransitionKind
	State     SessionState
}
