package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DiogoBrazil/medimage-api/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	codec := NewTokenCodec("test-secret", 60)

	input := PrincipalInput{
		ID:            "prof-1",
		FullName:      "Ana Souza",
		Email:         "ana@example.com",
		Role:          domain.RoleProfessional,
		TenantAdminID: "admin-1",
	}
	token, expiresAt, err := codec.IssueDefault(input)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	principal, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, input.ID, principal.ID)
	assert.Equal(t, input.FullName, principal.FullName)
	assert.Equal(t, input.Email, principal.Email)
	assert.Equal(t, domain.RoleProfessional, principal.Role)
	assert.Equal(t, "admin-1", principal.TenantAdminID)
}

func TestTokenAdminIDOnlyForProfessionals(t *testing.T) {
	codec := NewTokenCodec("test-secret", 60)

	token, _, err := codec.IssueDefault(PrincipalInput{
		ID:            "admin-1",
		FullName:      "Carlos Lima",
		Email:         "carlos@example.com",
		Role:          domain.RoleAdministrator,
		TenantAdminID: "should-be-dropped",
	})
	require.NoError(t, err)

	principal, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Empty(t, principal.TenantAdminID)
}

func TestTokenExpiredAtBoundary(t *testing.T) {
	codec := NewTokenCodec("test-secret", 60)

	// a zero ttl sets exp to the issuance instant; now >= exp must reject
	token, expiresAt, err := codec.Issue(PrincipalInput{
		ID:    "user-1",
		Email: "user@example.com",
		Role:  domain.RoleAdministrator,
	}, 0)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), expiresAt, time.Second)

	_, err = codec.Decode(token)
	require.Error(t, err)
	var authnErr *AuthnError
	require.ErrorAs(t, err, &authnErr)
	assert.Equal(t, ExpiredToken, authnErr.Kind)
	assert.Equal(t, "Token has expired", authnErr.Message)
}

func TestTokenBadSignature(t *testing.T) {
	issuer := NewTokenCodec("secret-a", 60)
	verifier := NewTokenCodec("secret-b", 60)

	token, _, err := issuer.IssueDefault(PrincipalInput{
		ID:    "user-1",
		Email: "user@example.com",
		Role:  domain.RoleAdministrator,
	})
	require.NoError(t, err)

	_, err = verifier.Decode(token)
	var authnErr *AuthnError
	require.ErrorAs(t, err, &authnErr)
	assert.Equal(t, BadSignature, authnErr.Kind)
}

func TestTokenTamperedSignature(t *testing.T) {
	codec := NewTokenCodec("test-secret", 60)

	token, _, err := codec.IssueDefault(PrincipalInput{
		ID:    "user-1",
		Email: "user@example.com",
		Role:  domain.RoleAdministrator,
	})
	require.NoError(t, err)

	// change one byte of the signature segment
	raw := []byte(token)
	idx := strings.LastIndexByte(token, '.') + 1
	if raw[idx] == 'A' {
		raw[idx] = 'B'
	} else {
		raw[idx] = 'A'
	}

	_, err = codec.Decode(string(raw))
	var authnErr *AuthnError
	require.ErrorAs(t, err, &authnErr)
	assert.Equal(t, BadSignature, authnErr.Kind)
}

func TestTokenMalformed(t *testing.T) {
	codec := NewTokenCodec("test-secret", 60)

	_, err := codec.Decode("not-a-token")
	var authnErr *AuthnError
	require.ErrorAs(t, err, &authnErr)
	assert.Equal(t, MalformedToken, authnErr.Kind)
	assert.Contains(t, authnErr.Message, "Invalid token: ")
}

func TestBootstrapAdminOverridesProfile(t *testing.T) {
	codec := NewTokenCodec("test-secret", 60)

	token, _, err := codec.IssueBootstrapAdmin("root-1", "Root", "root@example.com")
	require.NoError(t, err)

	principal, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdministrator, principal.Role)
	assert.Empty(t, principal.TenantAdminID)
}

func TestDefaultTTLApplied(t *testing.T) {
	codec := NewTokenCodec("test-secret", 0)

	_, expiresAt, err := codec.IssueDefault(PrincipalInput{
		ID:    "user-1",
		Email: "user@example.com",
		Role:  domain.RoleAdministrator,
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultTokenTTLMinutes*time.Minute), expiresAt, 5*time.Second)
}
