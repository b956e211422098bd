package session

// Role is the backend role of a user. Values are not validated; the backend
// may add roles without this package knowing about them.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ErrorTag marks a session whose tokens can no longer be trusted.
type ErrorTag string

const RefreshAccessTokenError ErrorTag = "RefreshAccessTokenError"

// Identity is a cached snapshot of the user record owned by the booking API.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// TokenPair holds the bearer tokens issued by the booking API.
// AccessTokenExpiresAt is in epoch seconds; zero means the API did not send one.
type TokenPair struct {
	AccessToken          string `json:"accessToken"`
	RefreshToken         string `json:"refreshToken"`
	AccessTokenExpiresAt int64  `json:"accessTokenExpires,omitempty"`
}

// Session is the authoritative token state for one principal.
type Session struct {
	Identity
	TokenPair
	Error ErrorTag `json:"error,omitempty"`

	// RefreshAttemptedAt is the clock reading, in milliseconds, of the last refresh attempt.
	RefreshAttemptedAt int64 `json:"refreshAttemptedAt,omitempty"`
}

// Clone returns a copy that shares nothing with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// Snapshot is the read-only view of a session handed to the rest of the application.
type Snapshot struct {
	User                 *SnapshotUser `json:"user,omitempty"`
	AccessToken          string        `json:"accessToken,omitempty"`
	RefreshToken         string        `json:"refreshToken,omitempty"`
	AccessTokenExpiresAt int64         `json:"accessTokenExpires,omitempty"`
	Error                ErrorTag      `json:"error,omitempty"`
}

type SnapshotUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// Authenticated reports whether the snapshot may be used for bearer-token API calls.
// A snapshot tagged with an error still carries the user for display but is not authenticated.
func (s Snapshot) Authenticated() bool {
	return s.User != nil && s.Error == "" && s.AccessToken != ""
}

// Clone returns a copy that does not share the user with s.
func (s Snapshot) Clone() Snapshot {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// HasUser reports whether there is an identity to display.
func (s Snapshot) HasUser() bool {
	return s.User != nil
}

// State is a position in the authentication state machine.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	StateAuthenticatedWithError
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateAuthenticatedWithError:
		return "authenticated_with_error"
	default:
		return "unknown"
	}
}
