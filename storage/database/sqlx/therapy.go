package sqlxrepos

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/mtunza/tiba/core/therapy"
)

type sessionRow struct {
	ID          string    `db:"id"`
	OwnerID     string    `db:"owner_id"`
	ChildID     string    `db:"child_id"`
	Topic       string    `db:"topic"`
	Notes       string    `db:"notes"`
	Status      string    `db:"status"`
	ScheduledAt time.Time `db:"scheduled_at"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r sessionRow) toSession() therapy.Session {
	return therapy.Session{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		ChildID:     r.ChildID,
		Topic:       r.Topic,
		Notes:       r.Notes,
		Status:      therapy.Status(r.Status),
		ScheduledAt: r.ScheduledAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type assessmentRow struct {
	ID         string    `db:"id"`
	TherapyID  string    `db:"therapy_id"`
	Kind       string    `db:"kind"`
	Score      int       `db:"score"`
	Summary    string    `db:"summary"`
	RecordedAt time.Time `db:"recorded_at"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r assessmentRow) toAssessment() therapy.Assessment {
	return therapy.Assessment{
		ID:         r.ID,
		TherapyID:  r.TherapyID,
		Kind:       therapy.Kind(r.Kind),
		Score:      r.Score,
		Summary:    r.Summary,
		RecordedAt: r.RecordedAt,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

const (
	sessionColumns    = `id, owner_id, child_id, topic, notes, status, scheduled_at, created_at, updated_at`
	assessmentColumns = `id, therapy_id, kind, score, summary, recorded_at, created_at, updated_at`
)

type therapyRepository struct {
	db *sqlx.DB
}

func NewTherapyRepository(db *sqlx.DB) therapy.Repository {
	return &therapyRepository{db: db}
}

func (repo *therapyRepository) CreateSession(sess therapy.Session) (therapy.Session, error) {
	const query = `
		INSERT INTO therapy_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.Exec(query,
		sess.ID, sess.OwnerID, sess.ChildID, sess.Topic, sess.Notes,
		sess.Status, sess.ScheduledAt, sess.CreatedAt, sess.UpdatedAt,
	)
	return sess, errors.Wrap(err, "inserting therapy session")
}

func (repo *therapyRepository) QueryAllSessions() ([]therapy.Session, error) {
	var rows []sessionRow
	err := repo.db.Select(&rows, `SELECT `+sessionColumns+` FROM therapy_sessions ORDER BY created_at, id`)
	if err != nil {
		return nil, errors.Wrap(err, "querying therapy sessions")
	}
	return rowsToSessions(rows), nil
}

func (repo *therapyRepository) GetSessionByID(id string) (therapy.Session, error) {
	var row sessionRow
	err := repo.db.Get(&row, `SELECT `+sessionColumns+` FROM therapy_sessions WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return therapy.Session{}, therapy.ErrSessionNotFound
	}
	if err != nil {
		return therapy.Session{}, errors.Wrap(err, "getting therapy session")
	}
	return row.toSession(), nil
}

func (repo *therapyRepository) FilterSessions(filter therapy.QueryFilter) ([]therapy.Session, error) {
	where := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		// one arg per placeholder; the ChildIDs path rewrites them for sqlx.In
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		where = append(where, fmt.Sprintf("(LOWER(topic) LIKE %s OR LOWER(notes) LIKE %s)", arg(pattern), arg(pattern)))
	}
	if filter.OwnerID != "" {
		where = append(where, "owner_id = "+arg(filter.OwnerID))
	}
	if filter.ChildID != "" {
		where = append(where, "child_id = "+arg(filter.ChildID))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(filter.Status))
	}

	query := `SELECT ` + sessionColumns + ` FROM therapy_sessions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, id`

	if len(filter.ChildIDs) > 0 {
		// rebuild with the IN clause; sqlx.In expands the slice
		clause := ` WHERE `
		if len(where) > 0 {
			clause = ` WHERE ` + strings.Join(where, " AND ") + ` AND `
		}
		var err error
		query = `SELECT ` + sessionColumns + ` FROM therapy_sessions` + clause + `child_id IN (?) ORDER BY created_at, id`
		query, args, err = repo.expandIn(query, args, filter.ChildIDs)
		if err != nil {
			return nil, err
		}
	}

	var rows []sessionRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering therapy sessions")
	}
	return rowsToSessions(rows), nil
}

// expandIn rewrites a query mixing $n placeholders and a single trailing
// IN (?) into uniform bindvars for the driver.
func (repo *therapyRepository) expandIn(query string, args []interface{}, ids []string) (string, []interface{}, error) {
	query = strings.NewReplacer(
		"$1", "?", "$2", "?", "$3", "?", "$4", "?", "$5", "?",
	).Replace(query)
	allArgs := append(append([]interface{}{}, args...), ids)
	query, expanded, err := sqlx.In(query, allArgs...)
	if err != nil {
		return "", nil, errors.Wrap(err, "building IN clause")
	}
	return repo.db.Rebind(query), expanded, nil
}

func (repo *therapyRepository) UpdateSession(sess therapy.Session) (therapy.Session, error) {
	const query = `
		UPDATE therapy_sessions
		SET topic = $2, notes = $3, status = $4, scheduled_at = $5, updated_at = $6
		WHERE id = $1`
	res, err := repo.db.Exec(query, sess.ID, sess.Topic, sess.Notes, sess.Status, sess.ScheduledAt, sess.UpdatedAt)
	if err != nil {
		return therapy.Session{}, errors.Wrap(err, "updating therapy session")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return therapy.Session{}, therapy.ErrSessionNotFound
	}
	return repo.GetSessionByID(sess.ID)
}

func (repo *therapyRepository) DeleteSessionsByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	// assessments cascade via FK
	query, args, err := sqlx.In(`DELETE FROM therapy_sessions WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	_, err = repo.db.Exec(repo.db.Rebind(query), args...)
	return errors.Wrap(err, "deleting therapy sessions")
}

func (repo *therapyRepository) CreateAssessment(asmt therapy.Assessment) (therapy.Assessment, error) {
	const query = `
		INSERT INTO assessments (` + assessmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.Exec(query,
		asmt.ID, asmt.TherapyID, asmt.Kind, asmt.Score, asmt.Summary,
		asmt.RecordedAt, asmt.CreatedAt, asmt.UpdatedAt,
	)
	return asmt, errors.Wrap(err, "inserting assessment")
}

func (repo *therapyRepository) GetAssessmentByID(id string) (therapy.Assessment, error) {
	var row assessmentRow
	err := repo.db.Get(&row, `SELECT `+assessmentColumns+` FROM assessments WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return therapy.Assessment{}, therapy.ErrAssessmentNotFound
	}
	if err != nil {
		return therapy.Assessment{}, errors.Wrap(err, "getting assessment")
	}
	return row.toAssessment(), nil
}

func (repo *therapyRepository) QueryAssessmentsByTherapyID(therapyID string) ([]therapy.Assessment, error) {
	var rows []assessmentRow
	err := repo.db.Select(&rows,
		`SELECT `+assessmentColumns+` FROM assessments WHERE therapy_id = $1 ORDER BY created_at, id`,
		therapyID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying assessments")
	}
	assessments := make([]therapy.Assessment, 0, len(rows))
	for _, row := range rows {
		assessments = append(assessments, row.toAssessment())
	}
	return assessments, nil
}

func (repo *therapyRepository) UpdateAssessment(asmt therapy.Assessment) (therapy.Assessment, error) {
	const query = `
		UPDATE assessments
		SET score = $2, summary = $3, updated_at = $4
		WHERE id = $1`
	res, err := repo.db.Exec(query, asmt.ID, asmt.Score, asmt.Summary, asmt.UpdatedAt)
	if err != nil {
		return therapy.Assessment{}, errors.Wrap(err, "updating assessment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return therapy.Assessment{}, therapy.ErrAssessmentNotFound
	}
	return repo.GetAssessmentByID(asmt.ID)
}

func (repo *therapyRepository) DeleteAssessmentsByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM assessments WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	_, err = repo.db.Exec(repo.db.Rebind(query), args...)
	return errors.Wrap(err, "deleting assessments")
}

func rowsToSessions(rows []sessionRow) []therapy.Session {
	sessions := make([]therapy.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toSession())
	}
	return sessions
}
