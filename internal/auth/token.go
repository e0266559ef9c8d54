package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/DiogoBrazil/medimage-api/internal/domain"
)

// DefaultTokenTTLMinutes is applied when no TTL is configured (24 hours).
const DefaultTokenTTLMinutes = 1440

// Principal is the authenticated caller reconstructed from a verified token.
// It lives for one request and is never persisted.
type Principal struct {
	ID            string
	FullName      string
	Email         string
	Role          domain.Role
	TenantAdminID string
}

// PrincipalInput carries the fields signed into a token at issuance.
type PrincipalInput struct {
	ID            string
	FullName      string
	Email         string
	Role          domain.Role
	TenantAdminID string
}

// Claims describes the JWT payload. AdminID is emitted only for professionals;
// its absence is meaningful and round-trips as an empty TenantAdminID.
type Claims struct {
	UserID   string      `json:"user_id"`
	FullName string      `json:"full_name"`
	Email    string      `json:"email"`
	Profile  domain.Role `json:"profile"`
	AdminID  string      `json:"admin_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256-signed identity tokens. The secret is
// loaded once at process start; rotating it invalidates all issued tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec builds a codec with the given secret and TTL in minutes.
func NewTokenCodec(secret string, ttlMinutes int) *TokenCodec {
	if ttlMinutes <= 0 {
		ttlMinutes = DefaultTokenTTLMinutes
	}
	return &TokenCodec{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute}
}

// Issue signs a claim set for the principal, expiring after ttl. The ttl is
// taken literally: a zero ttl yields a token that is already expired at
// issuance. Callers wanting the configured lifetime use IssueDefault. The
// admin_id claim is included only when the role is professional and an admin
// id was supplied.
func (tc *TokenCodec) Issue(input PrincipalInput, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	claims := &Claims{
		UserID:   input.ID,
		FullName: input.FullName,
		Email:    input.Email,
		Profile:  input.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	if input.Role == domain.RoleProfessional && input.TenantAdminID != "" {
		claims.AdminID = input.TenantAdminID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tc.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// IssueDefault signs a claim set with the codec's configured lifetime.
func (tc *TokenCodec) IssueDefault(input PrincipalInput) (string, time.Time, error) {
	return tc.Issue(input, tc.ttl)
}

// IssueBootstrapAdmin signs the narrower claim shape used when provisioning
// the first administrative account: the profile is always administrator and
// admin_id is never emitted, regardless of the stored account's role.
func (tc *TokenCodec) IssueBootstrapAdmin(userID, fullName, email string) (string, time.Time, error) {
	return tc.IssueDefault(PrincipalInput{
		ID:       userID,
		FullName: fullName,
		Email:    email,
		Role:     domain.RoleAdministrator,
	})
}

// Decode verifies the MAC and expiry and reconstructs the principal. A token
// is invalid exactly at its expiry instant (now >= exp). Failures are
// distinguishable AuthnError kinds but are all rejected alike by callers.
func (tc *TokenCodec) Decode(tokenStr string) (Principal, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tc.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Principal{}, &AuthnError{Kind: ExpiredToken, Message: "Token has expired"}
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Principal{}, &AuthnError{Kind: BadSignature, Message: "Invalid token: signature verification failed"}
		default:
			return Principal{}, &AuthnError{Kind: MalformedToken, Message: "Invalid token: " + err.Error()}
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Principal{}, &AuthnError{Kind: MalformedToken, Message: "Invalid token: unexpected claims"}
	}

	return Principal{
		ID:            claims.UserID,
		FullName:      claims.FullName,
		Email:         claims.Email,
		Role:          claims.Profile,
		TenantAdminID: claims.AdminID,
	}, nil
}
