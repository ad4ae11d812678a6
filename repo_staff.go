package session

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// StaffDirectory is the persistence surface for staff records.
type StaffDirectory interface {
	repository.Repository[*StaffProfile]

	GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*StaffProfile, error)
	GetByUserID(ctx context.Context, userID string) (*StaffProfile, error)
	Register(ctx context.Context, record *StaffProfile) (*StaffProfile, error)
}

type staffDirectory struct {
	repository.Repository[*StaffProfile]
	db *bun.DB
}

var (
	_ StaffDirectory                       = (*staffDirectory)(nil)
	_ repository.Repository[*StaffProfile] = (*staffDirectory)(nil)
)

// NewStaffDirectory returns a bun-backed staff directory.
func NewStaffDirectory(db *bun.DB) StaffDirectory {
	repo := repository.NewRepository[*StaffProfile](db, repository.ModelHandlers[*StaffProfile]{
		NewRecord: func() *StaffProfile { return &StaffProfile{} },
		GetID: func(p *StaffProfile) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			id, err := uuid.Parse(p.ID)
			if err != nil {
				return uuid.Nil
			}
			return id
		},
		SetID: func(p *StaffProfile, id uuid.UUID) {
			if p != nil {
				p.ID = id.String()
			}
		},
	})

	return &staffDirectory{
		Repository: repo,
		db:         db,
	}
}

type identifierOption struct {
	column string
	value  string
}

func resolveStaffIdentifier(identifier string) []identifierOption {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil
	}

	if _, err := mail.ParseAddress(identifier); err == nil {
		return []identifierOption{
			{column: "email", value: strings.ToLower(identifier)},
			{column: "secondary_email", value: strings.ToLower(identifier)},
		}
	}

	if _, err := uuid.Parse(identifier); err == nil {
		return []identifierOption{
			{column: "id", value: identifier},
			{column: "user_id", value: identifier},
		}
	}

	return nil
}

func (a *staffDirectory) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*StaffProfile, error) {
	options := resolveStaffIdentifier(identifier)
	if len(options) == 0 {
		options = []identifierOption{
			{
				column: "id",
				value:  strings.TrimSpace(identifier),
			},
		}
	}

	for _, opt := range options {
		record := &StaffProfile{}
		q := a.db.NewSelect().Model(record)

		for _, c := range criteria {
			q.Apply(c)
		}

		err := q.
			Where(fmt.Sprintf("?TableAlias.%s = ?", opt.column), opt.value).
			Limit(1).
			Scan(ctx)

		if err != nil {
			if repository.IsRecordNotFound(err) {
				continue
			}
			return nil, err
		}

		return record, nil
	}

	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{
			"identifier": identifier,
		})
}

func (a *staffDirectory) GetByUserID(ctx context.Context, userID string) (*StaffProfile, error) {
	record := &StaffProfile{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"user_id": userID})
		}
		return nil, err
	}
	return record, nil
}

func (a *staffDirectory) Register(ctx context.Context, record *StaffProfile) (*StaffProfile, error) {
	prepareStaffDefaults(record)
	return a.Repository.Create(ctx, record)
}

func prepareStaffDefaults(record *StaffProfile) {
	if record == nil {
		return
	}

	record.Email = strings.ToLower(strings.TrimSpace(record.Email))

	if record.ID == "" {
		if id, err := hashid.NewUUID(record.Email); err == nil {
			record.ID = id.String()
		} else {
			record.ID = uuid.New().String()
		}
	}

	if record.UserID == "" {
		record.UserID = record.ID
	}

	if len(record.Roles) == 0 {
		record.Roles = []string{RoleStaff}
	}
}
