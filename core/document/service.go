package document

import (
	"time"

	"github.com/google/uuid"

	"github.com/mtunza/tiba/core"
	"github.com/mtunza/tiba/core/authz"
	"github.com/mtunza/tiba/core/user"
)

var (
	// errors
	ErrNotFound         = core.NotFoundError("document")
	ErrPermissionDenied = core.PermissionDeniedError()
)

type (
	Repository interface {
		CreateDocument(d Document) (Document, error)
		QueryAllDocuments() ([]Document, error)
		GetDocumentByID(id string) (Document, error)
		// FilterDocuments applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Document.Name.
		FilterDocuments(filter QueryFilter) ([]Document, error)
		UpdateDocument(d Document) (Document, error)
		DeleteDocumentsByID(ids ...string) error
	}

	Service interface {
		Create(actor *authz.Actor, nd NewDocument) (Document, error)
		GetByID(id string) (Document, error)
		Filter(filter QueryFilter) ([]Document, error)
		Update(actor *authz.Actor, id string, ud UpdateDocument) (Document, error)
		Delete(actor *authz.Actor, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(actor *authz.Actor, nd NewDocument) (Document, error) {
	// only counselors upload documents
	if actor == nil || actor.Role != user.RoleCounselor {
		return Document{}, ErrPermissionDenied
	}
	now := time.Now().UTC()
	return svc.repo.CreateDocument(Document{
		ID:          uuid.New().String(),
		OwnerID:     actor.ID,
		ChildID:     nd.ChildID,
		Name:        nd.Name,
		ContentType: nd.ContentType,
		Size:        nd.Size,
		StorageKey:  nd.StorageKey,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) GetByID(id string) (Document, error) {
	return svc.repo.GetDocumentByID(id)
}

func (svc *service) Filter(filter QueryFilter) ([]Document, error) {
	return svc.repo.FilterDocuments(filter)
}

func (svc *service) Update(actor *authz.Actor, id string, ud UpdateDocument) (Document, error) {
	doc, err := svc.repo.GetDocumentByID(id)
	if err != nil {
		return Document{}, err
	}
	if !authz.CanMutate(doc, actor) {
		return Document{}, ErrPermissionDenied
	}
	doc.Name = ud.Name
	doc.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateDocument(doc)
}

func (svc *service) Delete(actor *authz.Actor, ids ...string) error {
	for _, id := range ids {
		doc, err := svc.repo.GetDocumentByID(id)
		if err != nil {
			return err
		}
		if !authz.CanMutate(doc, actor) {
			return ErrPermissionDenied
		}
	}
	return svc.repo.DeleteDocumentsByID(ids...)
}
