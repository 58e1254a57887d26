package sqlxrepos

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/mtunza/tiba/core/document"
)

type documentRow struct {
	ID          string    `db:"id"`
	OwnerID     string    `db:"owner_id"`
	ChildID     string    `db:"child_id"`
	Name        string    `db:"name"`
	ContentType string    `db:"content_type"`
	Size        int64     `db:"size"`
	StorageKey  string    `db:"storage_key"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r documentRow) toDocument() document.Document {
	return document.Document(r)
}

const documentColumns = `id, owner_id, child_id, name, content_type, size, storage_key, created_at, updated_at`

type documentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) document.Repository {
	return &documentRepository{db: db}
}

func (repo *documentRepository) CreateDocument(doc document.Document) (document.Document, error) {
	const query = `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.Exec(query,
		doc.ID, doc.OwnerID, doc.ChildID, doc.Name, doc.ContentType,
		doc.Size, doc.StorageKey, doc.CreatedAt, doc.UpdatedAt,
	)
	return doc, errors.Wrap(err, "inserting document")
}

func (repo *documentRepository) QueryAllDocuments() ([]document.Document, error) {
	var rows []documentRow
	err := repo.db.Select(&rows, `SELECT `+documentColumns+` FROM documents ORDER BY created_at, id`)
	if err != nil {
		return nil, errors.Wrap(err, "querying documents")
	}
	return rowsToDocuments(rows), nil
}

func (repo *documentRepository) GetDocumentByID(id string) (document.Document, error) {
	var row documentRow
	err := repo.db.Get(&row, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return document.Document{}, document.ErrNotFound
	}
	if err != nil {
		return document.Document{}, errors.Wrap(err, "getting document")
	}
	return row.toDocument(), nil
}

func (repo *documentRepository) FilterDocuments(filter document.QueryFilter) ([]document.Document, error) {
	where := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		where = append(where, "LOWER(name) LIKE "+arg("%"+strings.ToLower(filter.Search)+"%"))
	}
	if filter.OwnerID != "" {
		where = append(where, "owner_id = "+arg(filter.OwnerID))
	}
	if filter.ChildID != "" {
		where = append(where, "child_id = "+arg(filter.ChildID))
	}
	if filter.ContentType != "" {
		where = append(where, "content_type = "+arg(filter.ContentType))
	}

	query := `SELECT ` + documentColumns + ` FROM documents`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, id`

	var rows []documentRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering documents")
	}
	return rowsToDocuments(rows), nil
}

func (repo *documentRepository) UpdateDocument(doc document.Document) (document.Document, error) {
	const query = `
		UPDATE documents
		SET name = $2, updated_at = $3
		WHERE id = $1`
	res, err := repo.db.Exec(query, doc.ID, doc.Name, doc.UpdatedAt)
	if err != nil {
		return document.Document{}, errors.Wrap(err, "updating document")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return document.Document{}, document.ErrNotFound
	}
	return repo.GetDocumentByID(doc.ID)
}

func (repo *documentRepository) DeleteDocumentsByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM documents WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	_, err = repo.db.Exec(repo.db.Rebind(query), args...)
	return errors.Wrap(err, "deleting documents")
}

func rowsToDocuments(rows []documentRow) []document.Document {
	docs := make([]document.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, row.toDocument())
	}
	return docs
}
