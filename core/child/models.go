package child

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mtunza/tiba/core"
)

// Child is a minor enrolled with the practice. ParentID links the guardian
// account; CounselorID is the counselor currently following the child.
type Child struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Birthdate   time.Time `json:"birthdate"`
	ParentID    string    `json:"parent_id"`
	CounselorID string    `json:"counselor_id"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// Age in full years at the given time.
func (c *Child) Age(at time.Time) int {
	years := at.Year() - c.Birthdate.Year()
	if at.YearDay() < c.Birthdate.YearDay() {
		years--
	}
	return years
}

// NewChild contains information needed to enroll a new Child.
type NewChild struct {
	Name        string    `json:"name" validate:"required"`
	Birthdate   time.Time `json:"birthdate" validate:"required"`
	ParentID    string    `json:"parent_id" validate:"required"`
	CounselorID string    `json:"counselor_id" validate:"required"`
	Notes       string    `json:"notes"`
}

func (nc *NewChild) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Notes = core.CleanString(nc.Notes)
	return validate.Struct(nc)
}

// UpdateChild defines what information may be provided to modify an existing Child.
type UpdateChild struct {
	Name        string `json:"name"`
	CounselorID string `json:"counselor_id"`
	Notes       string `json:"notes"`
}

func (uc *UpdateChild) Validate(orig Child, validate *validator.Validate) error {
	name := core.CleanString(uc.Name)
	if name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	if uc.CounselorID == "" {
		uc.CounselorID = orig.CounselorID
	}
	uc.Notes = core.CleanString(uc.Notes)
	return validate.Struct(uc)
}

type QueryFilter struct {
	Search      string `query:"search"`
	ParentID    string `query:"parent_id"`
	CounselorID string `query:"counselor_id"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.ParentID == "" && qf.CounselorID == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
