package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type Role string

const (
	RoleMerchant   Role = "merchant"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrUnknownRole  = errors.New("unknown role")
)

func (r Role) Valid() bool {
	switch r {
	case RoleMerchant, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Caller is the authenticated identity behind a merchant request.
type Caller struct {
	UserID uuid.UUID
	Role   Role
}

// CanAccess reports whether caller may read or mutate a row owned by ownerID:
// owners see their own rows and super admins see everything.
func CanAccess(caller Caller, ownerID uuid.UUID) bool {
	if caller.Role == RoleSuperAdmin {
		return true
	}
	return caller.UserID != uuid.Nil && caller.UserID == ownerID
}

// Scope returns the owner filter for list queries: nil for super admins.
func Scope(caller Caller) *uuid.UUID {
	if caller.Role == RoleSuperAdmin {
		return nil
	}
	id := caller.UserID
	return &id
}

type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Issue signs an HS256 token for userID. Used by tooling and tests; sessions
// are normally minted by the identity provider sharing the secret.
func (s *TokenService) Issue(userID uuid.UUID, role Role, ttl time.Duration) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("%w %q", ErrUnknownRole, role)
	}
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *TokenService) Parse(tokenString string) (Caller, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Caller{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Caller{}, ErrInvalidToken
	}

	if !claims.Role.Valid() {
		return Caller{}, ErrInvalidToken
	}

	return Caller{UserID: userID, Role: claims.Role}, nil
}
