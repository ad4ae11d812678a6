package session

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

// HTTPAuthenticator is the surface the controller needs from the route
// authenticator.
type HTTPAuthenticator interface {
	Login(ctx router.Context, payload LoginPayload) error
	Logout(ctx router.Context)
	Keepalive(ctx router.Context) error
	GetRedirect(ctx router.Context, def ...string) string
	SetRedirectTo(ctx router.Context, target string)
	ProtectedRoute(errorHandler func(router.Context, error) error) router.MiddlewareFunc
}

var _ HTTPAuthenticator = (*RouteAuthenticator)(nil)

// RegisterSessionRoutes mounts the session endpoints on app.
func RegisterSessionRoutes[T any](app router.Router[T], opts ...SessionControllerOption) {
	controller := NewSessionController(opts...)

	app.
		Get(controller.Routes.Login, controller.LoginShow).
		SetName("sign-in.get")

	app.
		Post(controller.Routes.Login, controller.LoginPost).
		SetName("sign-in.post")

	app.Get(controller.Routes.Logout, controller.LogOut).SetName("sign-out.get")

	app.Get(controller.Routes.Keepalive, controller.Keepalive).
		SetName("session.keepalive")

	app.Get(controller.Routes.Register, controller.RegistrationShow).
		SetName("register.get")
	app.Post(controller.Routes.Register, controller.RegistrationCreate).
		SetName("register.post")
}

type SessionControllerRoutes struct {
	Login     string
	Logout    string
	Keepalive string
	Register  string
}

type SessionControllerViews struct {
	Login    string
	Register string
}

// SessionController owns the login, logout, keepalive, and admin registration
// endpoints.
type SessionController struct {
	Debug        bool
	Logger       Logger
	Directory    StaffDirectory
	Routes       *SessionControllerRoutes
	Views        *SessionControllerViews
	Auther       HTTPAuthenticator
	ErrorHandler router.ErrorHandler
}

type SessionControllerOption func(*SessionController) *SessionController

// WithControllerAuthenticator wires the route authenticator.
func WithControllerAuthenticator(auther HTTPAuthenticator) SessionControllerOption {
	return func(c *SessionController) *SessionController {
		c.Auther = auther
		return c
	}
}

// WithControllerDirectory wires the staff directory used by registration.
func WithControllerDirectory(directory StaffDirectory) SessionControllerOption {
	return func(c *SessionController) *SessionController {
		c.Directory = directory
		return c
	}
}

// WithControllerLogger overrides the controller logger.
func WithControllerLogger(logger Logger) SessionControllerOption {
	return func(c *SessionController) *SessionController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func NewSessionController(opts ...SessionControllerOption) *SessionController {
	c := &SessionController{
		Logger:       defLogger{},
		ErrorHandler: defaultControllerErrHandler,
		Routes: &SessionControllerRoutes{
			Login:     "/login",
			Logout:    "/logout",
			Keepalive: "/session/keepalive",
			Register:  "/register",
		},
		Views: &SessionControllerViews{
			Login:    "login",
			Register: "register",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing HTTPAuthenticator in session controller...")
	}

	return c
}

func (a *SessionController) LoginShow(ctx router.Context) error {
	return ctx.Render(a.Views.Login, router.ViewContext{
		"errors": nil,
		"record": nil,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Identifier     string `form:"identifier" json:"identifier"`
	Password       string `form:"password" json:"password"`
	CallbackTarget string `form:"callback_target" json:"callback_target"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// GetCallbackTarget returns the post-login redirect target, untouched
func (r LoginRequest) GetCallbackTarget() string {
	return r.CallbackTarget
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

var _ LoginPayload = LoginRequest{}

func (a *SessionController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)
	errs := map[string]string{}

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.Render(a.Views.Login, router.ViewContext{
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	if a.Debug {
		a.Logger.Debug("login payload", "payload", print.MaybePrettyJSON(payload))
	}

	if err := a.Auther.Login(ctx, payload); err != nil {
		errs["authentication"] = loginErrorMessage(err)
		return ctx.Render(a.Views.Login, router.ViewContext{
			"errors": errs,
			"record": payload,
		})
	}

	redirect := a.Auther.GetRedirect(ctx, payload.GetCallbackTarget(), "/")

	return ctx.Redirect(redirect, router.StatusSeeOther)
}

func (a *SessionController) LogOut(ctx router.Context) error {
	a.Auther.Logout(ctx)
	return ctx.Redirect("/login", router.StatusTemporaryRedirect)
}

func (a *SessionController) Keepalive(ctx router.Context) error {
	return a.Auther.Keepalive(ctx)
}

func (a *SessionController) RegistrationShow(ctx router.Context) error {
	return ctx.Render(a.Views.Register, router.ViewContext{
		"errors": map[string]string{},
		"record": RegisterStaffMessage{},
	})
}

// RegistrationCreatePayload is the admin user-creation form payload
type RegistrationCreatePayload struct {
	Name            string `form:"name" json:"name"`
	Email           string `form:"email" json:"email"`
	Phone           string `form:"phone_number" json:"phone_number"`
	Department      string `form:"department" json:"department"`
	Organization    string `form:"organization" json:"organization"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.Length(10, 15)),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(10, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *SessionController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegistrationCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		errs := map[string]string{"form": "Failed to parse form"}
		a.Logger.Error("register staff parse payload", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.Register, router.ViewContext{
			"errors": errs,
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		errs := FormatValidationErrorToMap(err)
		a.Logger.Error("register staff validate payload", "error", err)

		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(a.Views.Register, router.ViewContext{
			"record":     payload,
			"validation": errs,
		})
	}

	req := RegisterStaffMessage{
		Name:         payload.Name,
		Email:        payload.Email,
		Phone:        payload.Phone,
		Department:   payload.Department,
		Organization: payload.Organization,
		Password:     payload.Password,
		UseHashid:    true,
	}

	registerStaff := NewRegisterStaffHandler(a.Directory)
	if err := registerStaff.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("register staff execute", "error", err)

		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error registering staff",
		}).Render(a.Views.Register, router.ViewContext{
			"record": payload,
			"errors": []string{err.Error()},
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Successful staff registration",
	}).Redirect("/", fiber.StatusSeeOther)
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return validation.NewError("validation_match", "values must match")
		}
		return nil
	}
}

// FormatValidationErrorToMap flattens ozzo validation errors into a view map.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	if errs, ok := err.(validation.Errors); ok {
		for field, ferr := range errs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["payload"] = err.Error()
	return out
}

// loginErrorMessage maps lifecycle errors onto the copy shown in the login
// view.
func loginErrorMessage(err error) string {
	switch {
	case IsInvalidCredentialsError(err):
		return "Invalid email or password"
	case IsSessionConflictError(err):
		return "A session is already active, retry or clear cookies"
	default:
		return "Authentication error"
	}
}

func defaultControllerErrHandler(c router.Context, err error) error {
	return c.Render("errors/500", router.ViewContext{
		"message": err.Error(),
	})
}
