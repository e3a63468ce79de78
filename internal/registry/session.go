package registry

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionIssuer mints and validates short-lived publish-session tokens so a
// `stc registry publish` invocation doesn't have to resend a publisher's
// password on every request once authenticated. Grounded directly on
// server/token.go's generateJWT/validateAndLookupJWTUser pair, generalized
// from a per-user web login session to a per-publisher CLI session: the
// signing key still binds to the account's password hash, folding in the
// stored credential hash, so a password change invalidates every
// outstanding session.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionIssuer builds an issuer signing with secret and minting tokens
// valid for ttl.
func NewSessionIssuer(secret []byte, ttl time.Duration) *SessionIssuer {
	return &SessionIssuer{secret: secret, ttl: ttl}
}

// Issue mints a session token for an already-authenticated publisher.
func (si *SessionIssuer) Issue(pub Publisher) (string, error) {
	claims := jwt.MapClaims{
		"iss": "stc-registry",
		"sub": pub.Username,
		"exp": time.Now().Add(si.ttl).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return tok.SignedString(si.signKey(pub))
}

// Validate parses tokenStr and returns the publisher username it was issued
// to, provided lookup resolves to the same account the token was signed
// against (so a deleted or renamed account's old tokens stop validating).
func (si *SessionIssuer) Validate(tokenStr string, lookup func(username string) (Publisher, error)) (string, error) {
	var username string
	_, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		sub, err := t.Claims.GetSubject()
		if err != nil {
			return nil, fmt.Errorf("cannot get subject: %w", err)
		}
		pub, err := lookup(sub)
		if err != nil {
			return nil, fmt.Errorf("subject could not be validated: %w", err)
		}
		username = pub.Username
		return si.signKey(pub), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer("stc-registry"), jwt.WithLeeway(time.Minute))
	if err != nil {
		return "", err
	}
	return username, nil
}

func (si *SessionIssuer) signKey(pub Publisher) []byte {
	key := make([]byte, 0, len(si.secret)+len(pub.PasswordHash))
	key = append(key, si.secret...)
	key = append(key, pub.PasswordHash...)
	return key
}
