package session_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	session "github.com/goliatone/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenConfig(key string) *session.ConsoleConfig {
	cfg := session.DefaultConfig()
	cfg.SigningKey = key
	cfg.Issuer = "console-test"
	cfg.Audience = []string{"console"}
	return cfg
}

func TestTokenRoundtrip(t *testing.T) {
	svc := session.NewTokenService(tokenConfig("test-secret"), nil)

	identity := &session.Identity{ID: "usr-1", Email: "ada@example.com"}
	profile := &session.StaffProfile{
		UserID:   "usr-1",
		Roles:    []string{session.RoleAssetAdmin, session.RoleStaff},
		OrgCodes: []string{"HQ"},
	}

	token, err := svc.Generate(identity, profile)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, "usr-1", claims.Subject())
	assert.Equal(t, "usr-1", claims.UserID())
	assert.Equal(t, []string{session.RoleAssetAdmin, session.RoleStaff}, claims.Roles())
	assert.Equal(t, "HQ", claims.OrgCode())
	assert.True(t, claims.HasRole(session.RoleAssetAdmin))
	assert.False(t, claims.HasRole(session.RoleSystemAdmin))
	assert.True(t, claims.Expires().After(time.Now()))
}

func TestTokenGenerateWithoutProfile(t *testing.T) {
	svc := session.NewTokenService(tokenConfig("test-secret"), nil)

	token, err := svc.Generate(&session.Identity{ID: "usr-1"}, nil)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, "usr-1", claims.UserID())
	assert.Empty(t, claims.Roles())
	assert.Equal(t, "", claims.OrgCode())
}

func TestTokenGenerateRequiresIdentity(t *testing.T) {
	svc := session.NewTokenService(tokenConfig("test-secret"), nil)

	_, err := svc.Generate(nil, nil)
	assert.Error(t, err)

	_, err = svc.Generate(&session.Identity{}, nil)
	assert.Error(t, err)
}

func TestTokenValidateExpired(t *testing.T) {
	svc := session.NewTokenService(tokenConfig("test-secret"), nil)

	claims := session.StaffClaims(&session.Identity{ID: "usr-1"}, nil)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    "console-test",
		Subject:   "usr-1",
		Audience:  jwt.ClaimStrings{"console"},
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}

	token, err := svc.SignClaims(claims)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	require.Error(t, err)
	assert.True(t, session.IsTokenExpiredError(err))
	assert.False(t, session.IsMalformedError(err))
}

func TestTokenValidateWrongKey(t *testing.T) {
	minter := session.NewTokenService(tokenConfig("secret-a"), nil)
	verifier := session.NewTokenService(tokenConfig("secret-b"), nil)

	token, err := minter.Generate(&session.Identity{ID: "usr-1"}, nil)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	require.Error(t, err)
	assert.True(t, session.IsMalformedError(err))
}

func TestTokenValidateWrongIssuer(t *testing.T) {
	minterCfg := tokenConfig("test-secret")
	minterCfg.Issuer = "someone-else"
	minter := session.NewTokenService(minterCfg, nil)

	verifier := session.NewTokenService(tokenConfig("test-secret"), nil)

	token, err := minter.Generate(&session.Identity{ID: "usr-1"}, nil)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestTokenValidateGarbage(t *testing.T) {
	svc := session.NewTokenService(tokenConfig("test-secret"), nil)

	_, err := svc.Validate("not-a-token")
	require.Error(t, err)
	assert.True(t, session.IsMalformedError(err))
}

func TestMultiTokenValidatorFallsThroughMalformed(t *testing.T) {
	primary := session.NewTokenService(tokenConfig("secret-a"), nil)
	secondary := session.NewTokenService(tokenConfig("secret-b"), nil)

	minted, err := secondary.Generate(&session.Identity{ID: "usr-1"}, nil)
	require.NoError(t, err)

	multi := session.NewMultiTokenValidator(primary, secondary)

	claims, err := multi.Validate(minted)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", claims.UserID())
}

func TestMultiTokenValidatorStopsOnExpired(t *testing.T) {
	expiredSvc := session.NewTokenService(tokenConfig("secret-a"), nil)

	claims := session.StaffClaims(&session.Identity{ID: "usr-1"}, nil)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    "console-test",
		Subject:   "usr-1",
		Audience:  jwt.ClaimStrings{"console"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	token, err := expiredSvc.SignClaims(claims)
	require.NoError(t, err)

	called := false
	fallback := session.TokenValidatorFunc(func(string) (session.ConsoleClaims, error) {
		called = true
		return nil, session.ErrTokenMalformed
	})

	multi := session.NewMultiTokenValidator(expiredSvc, fallback)

	// expired is terminal, not "try the next signer"
	_, err = multi.Validate(token)
	assert.True(t, session.IsTokenExpiredError(err))
	assert.False(t, called)
}

func TestMultiTokenValidatorAllMalformed(t *testing.T) {
	multi := session.NewMultiTokenValidator(
		session.NewTokenService(tokenConfig("secret-a"), nil),
		session.NewTokenService(tokenConfig("secret-b"), nil),
	)

	_, err := multi.Validate("garbage")
	require.Error(t, err)
	assert.True(t, session.IsMalformedError(err))
}

func TestStaffClaimsCopiesRoles(t *testing.T) {
	profile := &session.StaffProfile{
		UserID:   "usr-1",
		Roles:    []string{session.RoleStaff},
		OrgCodes: []string{"HQ"},
	}

	claims := session.StaffClaims(&session.Identity{ID: "usr-1"}, profile)
	profile.Roles[0] = "MUTATED"

	assert.Equal(t, []string{session.RoleStaff}, claims.Roles())
	assert.Equal(t, "HQ", claims.OrgCode())
}
