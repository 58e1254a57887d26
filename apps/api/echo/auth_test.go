package echoapi

import (
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/mtunza/tiba/core/user"
)

func TestGenerateTokenKeepsSigningError(t *testing.T) {
	setup(t)

	origKey := appJWTConfig.SigningKey
	appJWTConfig.SigningKey = struct{}{} // HMAC signing requires a []byte key
	defer func() { appJWTConfig.SigningKey = origKey }()

	_, err := GenerateToken(GetUserClaims(user.User{ID: "u1", Role: user.RoleCounselor}))
	if err == nil {
		t.Fatal("GenerateToken() should fail with an invalid signing key")
	}
	if cause := errors.Cause(err); cause != jwt.ErrInvalidKeyType {
		t.Errorf("errors.Cause(err) = %v, want %v", cause, jwt.ErrInvalidKeyType)
	}
}
