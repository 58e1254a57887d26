package document

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mtunza/tiba/core"
)

// Document is an uploaded media/report record. Its owner is the counselor who
// uploaded it, fixed at creation.
type Document struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	ChildID     string    `json:"child_id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	StorageKey  string    `json:"storage_key"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

func (d Document) Owner() string { return d.OwnerID }

// NewDocument contains information needed to register a new Document.
type NewDocument struct {
	ChildID     string `json:"child_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
	Size        int64  `json:"size" validate:"gte=0"`
	StorageKey  string `json:"storage_key" validate:"required"`
}

func (nd *NewDocument) Validate(validate *validator.Validate) error {
	nd.Name = core.CleanString(nd.Name)
	return validate.Struct(nd)
}

// UpdateDocument defines what information may be provided to modify an
// existing Document.
type UpdateDocument struct {
	Name string `json:"name" validate:"required"`
}

func (ud *UpdateDocument) Validate(validate *validator.Validate) error {
	ud.Name = core.CleanString(ud.Name)
	return validate.Struct(ud)
}

type QueryFilter struct {
	Search      string `query:"search"`
	OwnerID     string `query:"owner_id"`
	ChildID     string `query:"child_id"`
	ContentType string `query:"content_type"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.OwnerID == "" && qf.ChildID == "" && qf.ContentType == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
