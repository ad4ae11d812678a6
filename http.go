package session

import (
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteAuthenticator bridges the lifecycle to the HTTP surface: it runs the
// login saga, mints the console token cookie, and owns the redirect cookie
// used to return users to the page that rejected them.
type RouteAuthenticator struct {
	auth             *Authenticator
	tokens           TokenService
	store            CredentialStore
	cfg              Config
	cookieDuration   time.Duration
	Logger           Logger
	AuthErrorHandler func(c router.Context, err error) error
	ErrorHandler     func(c router.Context, err error) error
}

// NewHTTPAuthenticator wires the authenticator and token service behind the
// router surface.
func NewHTTPAuthenticator(auth *Authenticator, tokens TokenService, store CredentialStore, cfg Config) (*RouteAuthenticator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	cookieDuration := 24 * time.Hour
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	a := &RouteAuthenticator{
		auth:           auth,
		tokens:         tokens,
		store:          store,
		cfg:            cfg,
		Logger:         defLogger{},
		cookieDuration: cookieDuration,
	}

	a.ErrorHandler = a.defaultErrHandler
	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

// Login runs the credential exchange and, on success, mints the console token
// cookie enriched with the resolved staff profile.
func (a *RouteAuthenticator) Login(ctx router.Context, payload LoginPayload) error {
	result, err := a.auth.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword(), payload.GetCallbackTarget())
	if err != nil {
		a.Logger.Error("Login error", "error", err)
		return err
	}

	staff := a.auth.CurrentStaff(ctx.Context())

	token, err := a.tokens.Generate(result.Identity, staff)
	if err != nil {
		a.Logger.Error("Login token mint error", "error", err)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint console token")
	}

	a.setCookieToken(ctx, token, a.cookieDuration)
	return nil
}

// Logout tears the session down and expires the console token cookie. Never
// fails.
func (a *RouteAuthenticator) Logout(ctx router.Context) {
	a.auth.Logout(ctx.Context())
	a.cookieDel(ctx, a.cfg.GetContextKey())
}

// Keepalive restamps activity for an authenticated client and reports the
// effective session expiry.
func (a *RouteAuthenticator) Keepalive(ctx router.Context) error {
	if a.store.IsSessionExpired() {
		return a.AuthErrorHandler(ctx, ErrTokenExpired)
	}

	if err := a.store.UpdateLastActivity(); err != nil {
		a.Logger.Warn("Keepalive failed to restamp activity", "error", err)
	}

	payload := map[string]any{"status": "ok"}
	if expiry, ok := a.store.SessionExpiry(); ok {
		payload["expires_at"] = expiry.Format(time.RFC3339)
	}

	return ctx.JSON(http.StatusOK, payload)
}

// MakeClientRouteAuthErrorHandler normalizes token validation failures. With
// optional set, the request proceeds unauthenticated instead of failing.
func (a *RouteAuthenticator) MakeClientRouteAuthErrorHandler(optional bool) func(router.Context, error) error {
	return func(ctx router.Context, err error) error {
		var richErr *goerrors.Error

		if IsTokenExpiredError(err) {
			richErr = ErrTokenExpired
		} else if IsMalformedError(err) {
			richErr = ErrTokenMalformed
		} else {
			richErr = goerrors.Wrap(err, goerrors.CategoryAuth, "Invalid console token").
				WithCode(goerrors.CodeUnauthorized)
		}

		if optional {
			a.Logger.Info("Optional auth failed, proceeding", "error", richErr.Message)
			return ctx.Next()
		}

		return a.ErrorHandler(ctx, richErr)
	}
}

// GetRedirect returns and clears the redirect cookie, falling back to the
// first non-empty default.
func (a *RouteAuthenticator) GetRedirect(ctx router.Context, def ...string) string {
	rejectedRoute := a.cfg.GetRejectedRouteKey()
	r := ctx.Cookies(rejectedRoute)
	if r == "" {
		for _, d := range def {
			if d != "" {
				return d
			}
		}
		return a.cfg.GetRejectedRouteDefault()
	}
	a.cookieDel(ctx, rejectedRoute)
	return r
}

func (a *RouteAuthenticator) GetRedirectOrDefault(ctx router.Context) string {
	rejectedRoute := a.cfg.GetRejectedRouteKey()
	refererHeader := string(ctx.Referer())

	r := ctx.Cookies(rejectedRoute, refererHeader)
	if r == "" {
		r = a.cfg.GetRejectedRouteDefault()
	}
	a.cookieDel(ctx, rejectedRoute)
	return r
}

// SetRedirect remembers the rejected route so a later login can return to it.
func (a *RouteAuthenticator) SetRedirect(ctx router.Context) {
	a.SetRedirectTo(ctx, ctx.OriginalURL())
}

// SetRedirectTo remembers an explicit post-login target.
func (a *RouteAuthenticator) SetRedirectTo(ctx router.Context, target string) {
	if target == "" {
		return
	}

	rejectedRoute := a.cfg.GetRejectedRouteKey()

	a.Logger.Info("Setting redirect cookie", "key", rejectedRoute, "path", target)

	ctx.Cookie(&router.Cookie{
		Name:     rejectedRoute,
		Value:    target,
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) setCookieToken(c router.Context, val string, duration time.Duration) {
	c.Cookie(&router.Cookie{
		Name:     a.cfg.GetContextKey(),
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) defaultAuthErrHandler(c router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryAuth, "An unexpected authentication error").
			WithCode(goerrors.CodeUnauthorized)
	}

	a.Logger.Info(
		"Authentication error, redirecting to login",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", c.OriginalURL(),
	)

	a.SetRedirect(c)

	statusCode := http.StatusSeeOther
	if c.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}
	return c.Redirect("/login", statusCode)
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	a.Logger.Info(
		"Middleware error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return a.AuthErrorHandler(c, richErr)
	default:
		return c.Status(richErr.Code).Render("errors/500", router.ViewContext{
			"error": richErr,
		})
	}
}
