package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/DiogoBrazil/medimage-api/internal/config"
)

const (
	principalKey = "auth_principal"
	scopeKey     = "auth_scope"
)

// Middleware is the per-request authorization pipeline: static API key, then
// bearer token, then route classification and role/scope resolution. The
// order is fixed — a caller with a bad API key never learns whether its token
// was valid.
type Middleware struct {
	apiKey string
	codec  *TokenCodec
}

// NewMiddleware constructs the pipeline from the injected auth configuration.
func NewMiddleware(cfg config.AuthConfig, codec *TokenCodec) *Middleware {
	return &Middleware{apiKey: cfg.APIKey, codec: codec}
}

// Handle enforces credentials for every route and attaches the principal and
// resolved scope for downstream handlers. It performs no I/O.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	if err := m.verifyAPIKey(c.Get("api_key")); err != nil {
		return err
	}

	route := ClassifyRoute(c.Path())
	if route == RoutePublic {
		return c.Next()
	}

	principal, err := m.verifyToken(c.Get("Authorization"))
	if err != nil {
		return err
	}

	scope, authzErr := Resolve(principal, route)
	if authzErr != nil {
		return authzErr
	}

	c.Locals(principalKey, principal)
	c.Locals(scopeKey, scope)
	return c.Next()
}

func (m *Middleware) verifyAPIKey(apiKey string) error {
	if apiKey == "" {
		return &AuthnError{Kind: MissingAPIKey, Message: "API Key is required"}
	}
	if apiKey != m.apiKey {
		return &AuthnError{Kind: BadAPIKey, Message: "Invalid API Key"}
	}
	return nil
}

func (m *Middleware) verifyToken(header string) (Principal, error) {
	if header == "" {
		return Principal{}, &AuthnError{Kind: MissingToken, Message: "Authorization token is required"}
	}

	token := header
	if strings.HasPrefix(header, "Bearer") {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[1] == "" {
			return Principal{}, &AuthnError{Kind: MissingToken, Message: "Invalid Authorization header format. Use 'Bearer <token>'"}
		}
		token = parts[1]
	}

	return m.codec.Decode(token)
}

// PrincipalFromContext retrieves the authenticated caller set by Handle.
func PrincipalFromContext(c *fiber.Ctx) (Principal, bool) {
	principal, ok := c.Locals(principalKey).(Principal)
	return principal, ok
}

// ScopeFromContext retrieves the resolved tenant scope set by Handle.
func ScopeFromContext(c *fiber.Ctx) (TenantScope, bool) {
	scope, ok := c.Locals(scopeKey).(TenantScope)
	return scope, ok
}
