package inmemdb

import (
	"sort"
	"strings"

	"github.com/mtunza/tiba/core/document"
)

type documentRepository struct {
	db *documentTable
}

func NewDocumentRepository(db *DB) document.Repository {
	return &documentRepository{db: db.document}
}

func (repo *documentRepository) query() []document.Document {
	docs := make([]document.Document, 0, len(repo.db.table))
	for _, doc := range repo.db.table {
		docs = append(docs, *doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	return docs
}

func (repo *documentRepository) CreateDocument(doc document.Document) (document.Document, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[doc.ID] = &doc
	return doc, nil
}

func (repo *documentRepository) QueryAllDocuments() ([]document.Document, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *documentRepository) GetDocumentByID(id string) (document.Document, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if doc, ok := repo.db.table[id]; ok {
		return *doc, nil
	}
	return document.Document{}, document.ErrNotFound
}

func (repo *documentRepository) FilterDocuments(filter document.QueryFilter) ([]document.Document, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	search := strings.ToLower(filter.Search)
	docs := make([]document.Document, 0)
	for _, doc := range repo.query() {
		if search != "" && !strings.Contains(strings.ToLower(doc.Name), search) {
			continue
		}
		if filter.OwnerID != "" && doc.OwnerID != filter.OwnerID {
			continue
		}
		if filter.ChildID != "" && doc.ChildID != filter.ChildID {
			continue
		}
		if filter.ContentType != "" && doc.ContentType != filter.ContentType {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (repo *documentRepository) UpdateDocument(doc document.Document) (document.Document, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[doc.ID]; !ok {
		return document.Document{}, document.ErrNotFound
	}
	repo.db.table[doc.ID] = &doc
	return doc, nil
}

func (repo *documentRepository) DeleteDocumentsByID(ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
