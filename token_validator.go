package session

import (
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (ConsoleClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (ConsoleClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (ConsoleClaims, error) {
	if f == nil {
		return nil, ErrUnableToDecodeSession
	}
	return f(tokenString)
}

// MultiTokenValidator tries validators in order until one succeeds.
// It treats ErrTokenMalformed as "try next" and returns the last malformed
// error if all validators fail.
type MultiTokenValidator struct {
	validators []TokenValidator
}

// NewMultiTokenValidator filters nil validators and returns a composite validator.
func NewMultiTokenValidator(validators ...TokenValidator) *MultiTokenValidator {
	filtered := make([]TokenValidator, 0, len(validators))
	for _, v := range validators {
		if v != nil {
			filtered = append(filtered, v)
		}
	}
	return &MultiTokenValidator{validators: filtered}
}

// Validate satisfies the TokenValidator interface.
func (m *MultiTokenValidator) Validate(tokenString string) (ConsoleClaims, error) {
	var lastErr error
	for _, v := range m.validators {
		claims, err := v.Validate(tokenString)
		if err == nil {
			return claims, nil
		}
		if IsMalformedError(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrTokenMalformed
}

// JWKSValidator validates tokens signed by an external issuer against its
// published JWK Set. Used when the remote provider mints its own tokens
// instead of the console token service.
type JWKSValidator struct {
	jwks     *keyfunc.JWKS
	issuer   string
	audience []string
	logger   Logger
}

// JWKSValidatorOption customizes JWKS validator construction.
type JWKSValidatorOption func(*JWKSValidator)

// WithJWKSIssuer requires the iss claim to match.
func WithJWKSIssuer(issuer string) JWKSValidatorOption {
	return func(v *JWKSValidator) {
		v.issuer = issuer
	}
}

// WithJWKSAudience requires one of the aud claims to match.
func WithJWKSAudience(audience ...string) JWKSValidatorOption {
	return func(v *JWKSValidator) {
		v.audience = audience
	}
}

// WithJWKSLogger overrides the logger used for background refresh failures.
func WithJWKSLogger(logger Logger) JWKSValidatorOption {
	return func(v *JWKSValidator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// NewJWKSValidator fetches the JWK Set at jwksURL and keeps it refreshed in
// the background for the lifetime of the validator.
func NewJWKSValidator(jwksURL string, opts ...JWKSValidatorOption) (*JWKSValidator, error) {
	v := &JWKSValidator{logger: defLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			v.logger.Warn("JWKS background refresh failed", "url", jwksURL, "error", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "failed to fetch JWK Set").
			WithMetadata(map[string]any{"url": jwksURL})
	}

	v.jwks = jwks
	return v, nil
}

// Close stops the background JWKS refresh goroutine.
func (v *JWKSValidator) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// Validate satisfies the TokenValidator interface.
func (v *JWKSValidator) Validate(tokenString string) (ConsoleClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if v.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(v.issuer))
	}
	if len(v.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(v.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, v.jwks.Keyfunc, parserOptions...)
	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrUnableToDecodeSession
}

var (
	_ TokenValidator = (*TokenServiceImpl)(nil)
	_ TokenValidator = (*JWKSValidator)(nil)
	_ TokenValidator = (*MultiTokenValidator)(nil)
)
