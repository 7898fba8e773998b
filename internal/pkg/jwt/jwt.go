package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/attendx/attendx-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Identity is the pair the auth collaborator supplies for every operation.
// The core trusts these claims and performs no credential checks itself.
type Identity struct {
	UserID string
	Role   user.Role
}

type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	Identity(ctx context.Context) (Identity, error)
}

type serviceImpl struct {
	auth *jwtauth.JWTAuth
}

func NewJWTService(secret string) Service {
	return &serviceImpl{
		auth: jwtauth.New("HS256", []byte(secret), nil),
	}
}

func (s *serviceImpl) JWTAuth() *jwtauth.JWTAuth {
	return s.auth
}

// Identity extracts the authenticated user from the verified token claims.
func (s *serviceImpl) Identity(ctx context.Context) (Identity, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return Identity{}, fmt.Errorf("user_id claim is missing or invalid")
	}

	roleStr, ok := claims["role"].(string)
	if !ok || roleStr == "" {
		return Identity{}, fmt.Errorf("role claim is missing or invalid")
	}

	return Identity{UserID: userID, Role: user.Role(roleStr)}, nil
}

// TokenExpiry reads the expiry of a bearer token without verifying its
// signature. The sync agent uses it to warn when its configured token is
// about to lapse; verification stays server-side.
func TokenExpiry(token string) (time.Time, error) {
	parsed, err := jwt.Parse([]byte(token), jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse token: %w", err)
	}
	return parsed.Expiration(), nil
}
