package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eldtechnologies/lostfound/internal/models"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrMissingSubject = errors.New("token has no subject")
)

// Claims are the JWT claims issued by the identity provider.
type Claims struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	CampusID string `json:"campus_id,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for user valid for ttl.
func IssueToken(secret []byte, user models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
		CampusID: user.CampusID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyToken checks the signature and expiry of a token and returns the
// identity it asserts.
func VerifyToken(secret []byte, tokenString string) (*models.User, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}

	role := claims.Role
	if role == "" {
		role = models.RoleUser
	}
	return &models.User{
		ID:       claims.Subject,
		Name:     claims.Name,
		Email:    claims.Email,
		Role:     role,
		CampusID: claims.CampusID,
	}, nil
}
