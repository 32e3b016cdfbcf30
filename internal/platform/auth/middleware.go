package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

// PrincipalKey is the request-context key under which the authenticated
// principal is stored.
const PrincipalKey contextKey = "principal"

// Roles recognized by the API. A hospital acts on its own inventory and
// requests; an admin manages the registry and can view everything.
const (
	RoleHospital = "hospital"
	RoleAdmin    = "admin"
)

// Principal is the authenticated caller extracted from a verified token.
// HospitalID is uuid.Nil for principals not bound to a hospital (admins).
type Principal struct {
	ID         string
	Role       string
	HospitalID uuid.UUID
}

// Claims are the JWT claims this service understands.
type Claims struct {
	jwt.RegisteredClaims
	Role       string `json:"role"`
	HospitalID string `json:"hospital_id"`
}

type JWTConfig struct {
	Issuer   string
	Audience string
	JWKSURL  string
	// SigningKey enables HMAC verification for development/testing
	SigningKey []byte
}

// JWTMiddleware verifies a Bearer token on every request and stores the
// resulting Principal on the request context. Verification uses the HMAC
// signing key when configured, otherwise RSA keys from the JWKS endpoint
// (auto-discovered from the issuer when no explicit URL is set).
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	resolvedJWKSURL := cfg.JWKSURL
	if resolvedJWKSURL == "" && cfg.Issuer != "" && len(cfg.SigningKey) == 0 {
		provider, err := NewOIDCProvider(cfg.Issuer)
		if err == nil {
			resolvedJWKSURL = provider.JWKSURI
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			tokenStr := parts[1]
			claims := &Claims{}

			opts := []jwt.ParserOption{
				jwt.WithValidMethods([]string{"RS256", "HS256"}),
			}
			if cfg.Issuer != "" {
				opts = append(opts, jwt.WithIssuer(cfg.Issuer))
			}
			if cfg.Audience != "" {
				opts = append(opts, jwt.WithAudience(cfg.Audience))
			}

			var token *jwt.Token
			var err error

			if len(cfg.SigningKey) > 0 {
				// Dev mode: HMAC signing key
				token, err = jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
					return cfg.SigningKey, nil
				}, opts...)
			} else {
				// Production: JWKS validation
				token, err = jwt.ParseWithClaims(tokenStr, claims, jwksKeyFunc(resolvedJWKSURL), opts...)
			}

			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			p := Principal{
				ID:   claims.Subject,
				Role: claims.Role,
			}
			if p.Role == "" {
				p.Role = RoleHospital
			}
			if claims.HospitalID != "" {
				hid, err := uuid.Parse(claims.HospitalID)
				if err != nil {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid hospital_id claim")
				}
				p.HospitalID = hid
			}
			if p.Role == RoleHospital && p.HospitalID == uuid.Nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "hospital token missing hospital_id claim")
			}

			c.SetRequest(c.Request().WithContext(ContextWithPrincipal(c.Request().Context(), p)))
			return next(c)
		}
	}
}

// Debug headers honored by DevAuthMiddleware so multi-hospital flows can be
// exercised from curl without minting tokens.
const (
	DebugHospitalHeader = "X-Debug-Hospital"
	DebugRoleHeader     = "X-Debug-Role"
)

// DevAuthMiddleware is a permissive middleware for development. Requests
// without an Authorization header act as an admin, or as the hospital named
// by the X-Debug-Hospital header.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				p := Principal{ID: "dev-user", Role: RoleAdmin}
				if role := c.Request().Header.Get(DebugRoleHeader); role != "" {
					p.Role = role
				}
				if raw := c.Request().Header.Get(DebugHospitalHeader); raw != "" {
					hid, err := uuid.Parse(raw)
					if err != nil {
						return echo.NewHTTPError(http.StatusBadRequest, "invalid X-Debug-Hospital header")
					}
					p.HospitalID = hid
					p.Role = RoleHospital
					p.ID = "dev-hospital-user"
				}
				c.SetRequest(c.Request().WithContext(ContextWithPrincipal(c.Request().Context(), p)))
				return next(c)
			}
			// If a token is provided, still pass it through untouched
			return next(c)
		}
	}
}

// ContextWithPrincipal returns a copy of ctx carrying the principal.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFromContext extracts the authenticated principal from the request
// context. The second return value is false when no principal is present.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(Principal)
	return p, ok
}
