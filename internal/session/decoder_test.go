package session

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issuetrack/internal/domain"
	"github.com/spec-kit/issuetrack/pkg/util"
)

// makeToken assembles a structurally valid bearer token. The signature
// segment is garbage on purpose; the decoder never verifies it.
func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	body := base64.RawURLEncoding.EncodeToString(payload)
	sig := base64.RawURLEncoding.EncodeToString([]byte("sig"))
	return header + "." + body + "." + sig
}

func defaultClaims(exp time.Time) map[string]any {
	return map[string]any{
		"id":           "42",
		"username":     "casey",
		"email":        "casey@example.com",
		"phone_number": "555-0100",
		"role":         "customer",
		"exp":          exp.Unix(),
	}
}

func TestDecodeToken_Valid(t *testing.T) {
	now := time.Now()
	token := makeToken(t, defaultClaims(now.Add(time.Hour)))

	user, err := DecodeToken(token, now)
	require.NoError(t, err)
	assert.Equal(t, "42", user.ID)
	assert.Equal(t, "casey", user.Username)
	assert.Equal(t, "casey@example.com", user.Email)
	assert.Equal(t, "555-0100", user.PhoneNumber)
	assert.Equal(t, domain.RoleCustomer, user.Role)
}

func TestDecodeToken_NumericID(t *testing.T) {
	now := time.Now()
	claims := defaultClaims(now.Add(time.Hour))
	claims["id"] = 42

	user, err := DecodeToken(makeToken(t, claims), now)
	require.NoError(t, err)
	assert.Equal(t, "42", user.ID, "numeric ids normalize to canonical strings")
}

func TestDecodeToken_Expired(t *testing.T) {
	now := time.Now()
	token := makeToken(t, defaultClaims(now.Add(-100*time.Second)))

	user, err := DecodeToken(token, now)
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestDecodeToken_ExpAtNowIsExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	token := makeToken(t, defaultClaims(now))

	_, err := DecodeToken(token, now)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestDecodeToken_MissingExp(t *testing.T) {
	claims := defaultClaims(time.Now())
	delete(claims, "exp")

	_, err := DecodeToken(makeToken(t, claims), time.Now())
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestDecodeToken_Malformed(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	cases := map[string]string{
		"empty":        "",
		"one segment":  "justonesegment",
		"two segments": header + ".b",
		"bad base64":   header + ".!!!.c",
		"bad json":     header + "." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".c",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			user, err := DecodeToken(token, time.Now())
			assert.Nil(t, user)
			assert.Equal(t, util.CodeDecode, util.CodeOf(err))
		})
	}
}
