package session

import (
	"errors"
	"strings"

	"github.com/goliatone/go-router"
)

// ErrTokenMissingOrMalformed is returned by extractors when no usable token
// is present on the request.
var ErrTokenMissingOrMalformed = errors.New("missing or malformed console token")

// MiddlewareConfig drives the protected-route middleware.
type MiddlewareConfig struct {
	Validator      TokenValidator
	SuccessHandler router.HandlerFunc
	ErrorHandler   func(router.Context, error) error
	Filter         func(router.Context) bool
	// ContextKey is the Locals key claims are stored under.
	ContextKey  string
	TokenLookup string
	AuthScheme  string
	// RequiredRole rejects tokens missing the role tag when set.
	RequiredRole string
	// Store, when set, gets an activity restamp on every authenticated
	// request so navigation counts against the idle window.
	Store CredentialStore
}

// Protected returns middleware that rejects requests without a valid console
// token. Claims land in Locals under ContextKey and in the request's standard
// context.
func Protected(config ...MiddlewareConfig) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := middlewareDefaults(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, err := ExtractRawToken(ctx, tokenExtractors(cfg.TokenLookup, cfg.AuthScheme))
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			claims, err := cfg.Validator.Validate(raw)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			if cfg.RequiredRole != "" && !claims.HasRole(cfg.RequiredRole) {
				return cfg.ErrorHandler(ctx, ErrAuthorizationGone)
			}

			ctx.Locals(cfg.ContextKey, claims)
			ctx.SetContext(WithClaimsContext(ctx.Context(), claims))

			if cfg.Store != nil {
				// navigation counts as activity
				_ = cfg.Store.UpdateLastActivity()
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

func middlewareDefaults(config ...MiddlewareConfig) MiddlewareConfig {
	var cfg MiddlewareConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx router.Context, err error) error {
			return err
		}
	}

	if cfg.Validator == nil {
		cfg.Validator = TokenValidatorFunc(nil)
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "console_session"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = "cookie:console_session,header:Authorization"
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

// TokenExtractor pulls a raw token from one request location.
type TokenExtractor func(c router.Context) (string, error)

// ExtractRawToken tries extractors in order, returning the first hit.
func ExtractRawToken(ctx router.Context, extractors []TokenExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(ctx)
		if raw != "" && err == nil {
			break
		}
	}

	if raw == "" && err == nil {
		err = ErrTokenMissingOrMalformed
	}

	return raw, err
}

// tokenExtractors parses a lookup spec like
// "cookie:console_session,header:Authorization" into extractor functions.
func tokenExtractors(tokenLookup, authScheme string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		}
	}

	return extractors
}

// tokenFromHeader returns a function that extracts the token from a header.
func tokenFromHeader(header string, authScheme string) TokenExtractor {
	return func(c router.Context) (string, error) {
		a := c.GetString(header, "")
		authScheme = strings.TrimSpace(authScheme)
		l := len(authScheme)
		if l == 0 {
			return "", ErrTokenMissingOrMalformed
		}
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrTokenMissingOrMalformed
	}
}

// tokenFromQuery returns a function that extracts the token from the query string.
func tokenFromQuery(param string) TokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Query(param, "")
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}

// tokenFromCookie returns a function that extracts the token from a cookie.
func tokenFromCookie(name string) TokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}

// ProtectedRoute builds the standard protected-route middleware from config,
// validating against the token service and restamping activity.
func (a *RouteAuthenticator) ProtectedRoute(errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = a.MakeClientRouteAuthErrorHandler(false)
	}

	var validator TokenValidator
	if ts, ok := a.tokens.(TokenValidator); ok {
		validator = ts
	} else {
		validator = TokenValidatorFunc(func(tokenString string) (ConsoleClaims, error) {
			return a.tokens.Validate(tokenString)
		})
	}

	return Protected(MiddlewareConfig{
		Validator:    validator,
		ErrorHandler: errorHandler,
		ContextKey:   a.cfg.GetContextKey(),
		TokenLookup:  a.cfg.GetTokenLookup(),
		AuthScheme:   a.cfg.GetAuthScheme(),
		Store:        a.store,
	})
}
