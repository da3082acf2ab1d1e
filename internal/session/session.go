package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

var (
	ErrEmptyToken = errors.New("session token is empty")
	ErrLoggedOut  = errors.New("session has been logged out")
)

// Operator is the identity carried by the session credential, when the
// credential is a JWT. Fields are zero when they cannot be decoded.
type Operator struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type operatorClaims struct {
	Email  string `json:"email"`
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Session owns the bearer credential for every gateway call. It is created
// once at startup and injected; Logout invalidates it for all holders.
type Session struct {
	mu       sync.RWMutex
	token    string
	operator Operator
	active   bool
}

func New(token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrEmptyToken
	}
	return &Session{
		token:    token,
		operator: decodeOperator(token),
		active:   true,
	}, nil
}

// decodeOperator reads claims without verifying the signature; the API is the
// authority on validity, the session only needs display identity.
func decodeOperator(token string) Operator {
	var claims operatorClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Operator{}
	}

	op := Operator{Email: claims.Email}
	for _, candidate := range []string{claims.Subject, claims.UserID} {
		if id, err := uuid.Parse(candidate); err == nil {
			op.ID = id
			break
		}
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		op.ExpiresAt = &exp
	}
	return op
}

// Token implements oauth2.TokenSource.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.active {
		return nil, ErrLoggedOut
	}
	tok := &oauth2.Token{AccessToken: s.token, TokenType: "Bearer"}
	if s.operator.ExpiresAt != nil {
		tok.Expiry = *s.operator.ExpiresAt
	}
	return tok, nil
}

func (s *Session) Operator() Operator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.operator
}

func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Logout discards the credential. Safe to call more than once.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = false
	s.token = ""
	s.operator = Operator{}
}
