package sqlxrepos

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/mtunza/tiba/core/child"
)

type childRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Birthdate   time.Time `db:"birthdate"`
	ParentID    string    `db:"parent_id"`
	CounselorID string    `db:"counselor_id"`
	Notes       string    `db:"notes"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r childRow) toChild() child.Child {
	return child.Child(r)
}

const childColumns = `id, name, birthdate, parent_id, counselor_id, notes, created_at, updated_at`

type childRepository struct {
	db *sqlx.DB
}

func NewChildRepository(db *sqlx.DB) child.Repository {
	return &childRepository{db: db}
}

func (repo *childRepository) CreateChild(chd child.Child) (child.Child, error) {
	const query = `
		INSERT INTO children (` + childColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.Exec(query,
		chd.ID, chd.Name, chd.Birthdate, chd.ParentID, chd.CounselorID,
		chd.Notes, chd.CreatedAt, chd.UpdatedAt,
	)
	return chd, errors.Wrap(err, "inserting child")
}

func (repo *childRepository) QueryAllChildren() ([]child.Child, error) {
	var rows []childRow
	err := repo.db.Select(&rows, `SELECT `+childColumns+` FROM children ORDER BY created_at, id`)
	if err != nil {
		return nil, errors.Wrap(err, "querying children")
	}
	return rowsToChildren(rows), nil
}

func (repo *childRepository) GetChildByID(id string) (child.Child, error) {
	var row childRow
	err := repo.db.Get(&row, `SELECT `+childColumns+` FROM children WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return child.Child{}, child.ErrNotFound
	}
	if err != nil {
		return child.Child{}, errors.Wrap(err, "getting child")
	}
	return row.toChild(), nil
}

func (repo *childRepository) FilterChildren(filter child.QueryFilter) ([]child.Child, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		where = append(where, "LOWER(name) LIKE "+arg("%"+strings.ToLower(filter.Search)+"%"))
	}
	if filter.ParentID != "" {
		where = append(where, "parent_id = "+arg(filter.ParentID))
	}
	if filter.CounselorID != "" {
		where = append(where, "counselor_id = "+arg(filter.CounselorID))
	}

	query := `SELECT ` + childColumns + ` FROM children`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, id`

	var rows []childRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering children")
	}
	return rowsToChildren(rows), nil
}

func (repo *childRepository) UpdateChild(chd child.Child) (child.Child, error) {
	const query = `
		UPDATE children
		SET name = $2, counselor_id = $3, notes = $4, updated_at = $5
		WHERE id = $1`
	res, err := repo.db.Exec(query, chd.ID, chd.Name, chd.CounselorID, chd.Notes, chd.UpdatedAt)
	if err != nil {
		return child.Child{}, errors.Wrap(err, "updating child")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return child.Child{}, child.ErrNotFound
	}
	return repo.GetChildByID(chd.ID)
}

func (repo *childRepository) DeleteChildrenByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM children WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	_, err = repo.db.Exec(repo.db.Rebind(query), args...)
	return errors.Wrap(err, "deleting children")
}

func rowsToChildren(rows []childRow) []child.Child {
	children := make([]child.Child, 0, len(rows))
	for _, row := range rows {
		children = append(children, row.toChild())
	}
	return children
}
