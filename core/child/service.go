package child

import (
	"time"

	"github.com/google/uuid"

	"github.com/mtunza/tiba/core"
)

var ErrNotFound = core.NotFoundError("child")

type (
	Repository interface {
		CreateChild(c Child) (Child, error)
		QueryAllChildren() ([]Child, error)
		GetChildByID(id string) (Child, error)
		// FilterChildren applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Child.Name.
		FilterChildren(filter QueryFilter) ([]Child, error)
		UpdateChild(c Child) (Child, error)
		DeleteChildrenByID(ids ...string) error
	}

	Service interface {
		Create(nc NewChild) (Child, error)
		QueryAll() ([]Child, error)
		GetByID(id string) (Child, error)
		Filter(filter QueryFilter) ([]Child, error)
		Update(id string, uc UpdateChild) (Child, error)
		Delete(ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(nc NewChild) (Child, error) {
	now := time.Now().UTC()
	return svc.repo.CreateChild(Child{
		ID:          uuid.New().String(),
		Name:        nc.Name,
		Birthdate:   nc.Birthdate,
		ParentID:    nc.ParentID,
		CounselorID: nc.CounselorID,
		Notes:       nc.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) QueryAll() ([]Child, error) {
	return svc.repo.QueryAllChildren()
}

func (svc *service) GetByID(id string) (Child, error) {
	return svc.repo.GetChildByID(id)
}

func (svc *service) Filter(filter QueryFilter) ([]Child, error) {
	return svc.repo.FilterChildren(filter)
}

func (svc *service) Update(id string, uc UpdateChild) (Child, error) {
	orig, err := svc.repo.GetChildByID(id)
	if err != nil {
		return Child{}, err
	}
	orig.Name = uc.Name
	orig.CounselorID = uc.CounselorID
	orig.Notes = uc.Notes
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateChild(orig)
}

func (svc *service) Delete(ids ...string) error {
	return svc.repo.DeleteChildrenByID(ids...)
}
