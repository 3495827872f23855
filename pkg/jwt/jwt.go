package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types. A token of one type is never accepted where another is expected.
const (
	TypeAdmission    = "admission"
	TypeGuestSession = "guest_session"
	TypeIdentity     = "identity"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Type       string `json:"typ"`
	AccessCode string `json:"code,omitempty"`
	SessionID  string `json:"sid,omitempty"`
	Email      string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewManager(secret, issuer string) *Manager {
	return &Manager{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

// WithClock replaces the time source, used by tests to age tokens.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

func (m *Manager) sign(claims Claims, subject string, ttl time.Duration) (string, error) {
	now := m.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// IssueAdmission signs the access ticket carrying the presented code.
func (m *Manager) IssueAdmission(code string, ttl time.Duration) (string, error) {
	return m.sign(Claims{Type: TypeAdmission, AccessCode: code}, "", ttl)
}

// IssueGuestSession signs a guest session bound to a guest id and its session id.
func (m *Manager) IssueGuestSession(guestID, sessionID string, ttl time.Duration) (string, error) {
	return m.sign(Claims{Type: TypeGuestSession, SessionID: sessionID}, guestID, ttl)
}

// IssueIdentity signs a privileged identity token for a profile user id.
func (m *Manager) IssueIdentity(userID, email string, ttl time.Duration) (string, error) {
	return m.sign(Claims{Type: TypeIdentity, Email: email}, userID, ttl)
}

// Parse validates signature, expiry, issuer and the expected token type.
func (m *Manager) Parse(tokenString, wantType string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Type != wantType {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrInvalidToken, wantType, claims.Type)
	}
	return claims, nil
}
