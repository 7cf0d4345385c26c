package session

import (
	"encoding/json"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/issuetrack/internal/domain"
	"github.com/spec-kit/issuetrack/pkg/util"
)

// ErrTokenExpired marks a structurally valid token whose expiry has passed.
var ErrTokenExpired = errors.New("token expired")

// flexibleID accepts both string and numeric JSON ids and yields the
// canonical string form.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

// tokenClaims describes the JWT payload issued by the backend.
type tokenClaims struct {
	ID          flexibleID  `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	PhoneNumber string      `json:"phone_number"`
	Role        domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// DecodeToken reads the claims embedded in a bearer token without verifying
// its signature. The client never holds the signing secret; the backend
// re-validates the token on every authenticated call, so the payload is only
// trusted far enough to drive local rendering decisions.
//
// A malformed token yields a DECODE error; a structurally valid token whose
// exp is not strictly after now yields ErrTokenExpired. Either way the caller
// must treat the result as "no session".
func DecodeToken(raw string, now time.Time) (*domain.User, error) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, util.NewDecodeError("malformed token", err)
	}

	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(now) {
		return nil, ErrTokenExpired
	}

	return &domain.User{
		ID:          string(claims.ID),
		Username:    claims.Username,
		Email:       claims.Email,
		PhoneNumber: claims.PhoneNumber,
		Role:        claims.Role,
	}, nil
}
