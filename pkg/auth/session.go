package auth

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"
)

// Store is the global session store holding the durable auth snapshot.
// Browser clients read it on boot to render an optimistic shell while the
// access token is re-validated.
var Store *sessions.CookieStore

// SessionName is the name of the auth snapshot cookie.
const SessionName = "auth-storage"

// Session value keys.
const (
	SessionKeyUserID        = "user_id"
	SessionKeyEmail         = "email"
	SessionKeyRole          = "role"
	SessionKeyAuthenticated = "is_authenticated"
)

// InitSessionStore initializes the cookie-based session store.
//
// The secret parameter signs session cookies. It can be any passphrase -
// it will be SHA-256 hashed to derive a 32-byte key. The secret must be
// consistent across server restarts and multiple servers in a
// load-balanced deployment.
func InitSessionStore(secret string) {
	key := sha256.Sum256([]byte(secret))

	Store = sessions.NewCookieStore(key[:])
	Store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

// GetSession retrieves the auth session from the request.
// Creates a new session if one doesn't exist.
func GetSession(r *http.Request) (*sessions.Session, error) {
	return Store.Get(r, SessionName)
}

// SetAuthSnapshot writes the authenticated principal into the session.
// Written only at the login boundary.
func SetAuthSnapshot(session *sessions.Session, userID, email, role string) {
	session.Values[SessionKeyUserID] = userID
	session.Values[SessionKeyEmail] = email
	session.Values[SessionKeyRole] = role
	session.Values[SessionKeyAuthenticated] = true
}

// ClearAuthSnapshot removes the auth snapshot from the session.
// Written only at the logout boundary.
func ClearAuthSnapshot(session *sessions.Session) {
	delete(session.Values, SessionKeyUserID)
	delete(session.Values, SessionKeyEmail)
	delete(session.Values, SessionKeyRole)
	session.Values[SessionKeyAuthenticated] = false
	session.Options.MaxAge = -1
}

// SaveSession saves the session to the response.
func SaveSession(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	return session.Save(r, w)
}
