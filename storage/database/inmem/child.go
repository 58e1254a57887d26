package inmemdb

import (
	"sort"
	"strings"

	"github.com/mtunza/tiba/core/child"
)

type childRepository struct {
	db *childTable
}

func NewChildRepository(db *DB) child.Repository {
	return &childRepository{db: db.child}
}

func (repo *childRepository) query() []child.Child {
	children := make([]child.Child, 0, len(repo.db.table))
	for _, chd := range repo.db.table {
		children = append(children, *chd)
	}
	sort.Slice(children, func(i, j int) bool {
		if children[i].CreatedAt.Equal(children[j].CreatedAt) {
			return children[i].ID < children[j].ID
		}
		return children[i].CreatedAt.Before(children[j].CreatedAt)
	})
	return children
}

func (repo *childRepository) CreateChild(chd child.Child) (child.Child, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[chd.ID] = &chd
	return chd, nil
}

func (repo *childRepository) QueryAllChildren() ([]child.Child, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *childRepository) GetChildByID(id string) (child.Child, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if chd, ok := repo.db.table[id]; ok {
		return *chd, nil
	}
	return child.Child{}, child.ErrNotFound
}

func (repo *childRepository) FilterChildren(filter child.QueryFilter) ([]child.Child, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	search := strings.ToLower(filter.Search)
	children := make([]child.Child, 0)
	for _, chd := range repo.query() {
		if search != "" && !strings.Contains(strings.ToLower(chd.Name), search) {
			continue
		}
		if filter.ParentID != "" && chd.ParentID != filter.ParentID {
			continue
		}
		if filter.CounselorID != "" && chd.CounselorID != filter.CounselorID {
			continue
		}
		children = append(children, chd)
	}
	return children, nil
}

func (repo *childRepository) UpdateChild(chd child.Child) (child.Child, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[chd.ID]; !ok {
		return child.Child{}, child.ErrNotFound
	}
	repo.db.table[chd.ID] = &chd
	return chd, nil
}

func (repo *childRepository) DeleteChildrenByID(ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
