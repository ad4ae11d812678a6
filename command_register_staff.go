package session

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
)

// RegisterStaffMessage is the admin user-creation command: it provisions the
// auth principal and the staff record together. Never exposed as self-service.
type RegisterStaffMessage struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	Department   string   `json:"department"`
	Roles        []string `json:"roles"`
	Organization string   `json:"organization"`
	Password     string   `json:"password"`
	UseHashid    bool
}

func (e RegisterStaffMessage) Type() string { return "staff.register" }

// RegisterStaffHandler executes RegisterStaffMessage against the directory.
type RegisterStaffHandler struct {
	directory StaffDirectory
}

// NewRegisterStaffHandler returns a handler writing to directory.
func NewRegisterStaffHandler(directory StaffDirectory) *RegisterStaffHandler {
	return &RegisterStaffHandler{directory: directory}
}

func (h *RegisterStaffHandler) Execute(ctx context.Context, event RegisterStaffMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during staff registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterStaffHandler) execute(ctx context.Context, event RegisterStaffMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	hash, err := HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	record := &StaffProfile{
		Email:        strings.ToLower(strings.TrimSpace(event.Email)),
		Name:         getDisplayName(event.Name, event.Email),
		Department:   event.Department,
		Roles:        event.Roles,
		Organization: event.Organization,
		PasswordHash: hash,
		Active:       true,
	}
	if event.Phone != "" {
		record.Phones = []string{event.Phone}
	}
	if event.UseHashid {
		if id, err := hashid.NewUUID(record.Email); err == nil {
			record.ID = id.String()
		}
	}

	if _, err := h.directory.Register(ctx, record); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create staff record")
	}

	return nil
}

func getDisplayName(name, email string) string {
	if name != "" {
		return name
	}

	if strings.Contains(email, "@") {
		name = strings.Split(email, "@")[0]
	}

	return name
}
