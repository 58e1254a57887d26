package inmemdb

import (
	"sort"
	"strings"

	"github.com/mtunza/tiba/core/therapy"
)

type therapyRepository struct {
	sessions    *sessionTable
	assessments *assessmentTable
}

func NewTherapyRepository(db *DB) therapy.Repository {
	return &therapyRepository{sessions: db.session, assessments: db.assessment}
}

func (repo *therapyRepository) querySessions() []therapy.Session {
	sessions := make([]therapy.Session, 0, len(repo.sessions.table))
	for _, sess := range repo.sessions.table {
		sessions = append(sessions, *sess)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions
}

func (repo *therapyRepository) CreateSession(sess therapy.Session) (therapy.Session, error) {
	repo.sessions.mutex.Lock()
	defer repo.sessions.mutex.Unlock()

	repo.sessions.table[sess.ID] = &sess
	return sess, nil
}

func (repo *therapyRepository) QueryAllSessions() ([]therapy.Session, error) {
	repo.sessions.mutex.RLock()
	defer repo.sessions.mutex.RUnlock()
	return repo.querySessions(), nil
}

func (repo *therapyRepository) GetSessionByID(id string) (therapy.Session, error) {
	repo.sessions.mutex.RLock()
	defer repo.sessions.mutex.RUnlock()

	if sess, ok := repo.sessions.table[id]; ok {
		return *sess, nil
	}
	return therapy.Session{}, therapy.ErrSessionNotFound
}

func (repo *therapyRepository) FilterSessions(filter therapy.QueryFilter) ([]therapy.Session, error) {
	repo.sessions.mutex.RLock()
	defer repo.sessions.mutex.RUnlock()

	childIDs := make(map[string]struct{}, len(filter.ChildIDs))
	for _, id := range filter.ChildIDs {
		childIDs[id] = struct{}{}
	}

	search := strings.ToLower(filter.Search)
	sessions := make([]therapy.Session, 0)
	for _, sess := range repo.querySessions() {
		if search != "" &&
			!strings.Contains(strings.ToLower(sess.Topic), search) &&
			!strings.Contains(strings.ToLower(sess.Notes), search) {
			continue
		}
		if filter.OwnerID != "" && sess.OwnerID != filter.OwnerID {
			continue
		}
		if filter.ChildID != "" && sess.ChildID != filter.ChildID {
			continue
		}
		if len(childIDs) > 0 {
			if _, ok := childIDs[sess.ChildID]; !ok {
				continue
			}
		}
		if filter.Status != "" && sess.Status != filter.Status {
			continue
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

func (repo *therapyRepository) UpdateSession(sess therapy.Session) (therapy.Session, error) {
	repo.sessions.mutex.Lock()
	defer repo.sessions.mutex.Unlock()

	if _, ok := repo.sessions.table[sess.ID]; !ok {
		return therapy.Session{}, therapy.ErrSessionNotFound
	}
	repo.sessions.table[sess.ID] = &sess
	return sess, nil
}

func (repo *therapyRepository) DeleteSessionsByID(ids ...string) error {
	repo.sessions.mutex.Lock()
	defer repo.sessions.mutex.Unlock()
	repo.assessments.mutex.Lock()
	defer repo.assessments.mutex.Unlock()

	for _, id := range ids {
		delete(repo.sessions.table, id)
		for asmtID, asmt := range repo.assessments.table {
			if asmt.TherapyID == id {
				delete(repo.assessments.table, asmtID)
			}
		}
	}
	return nil
}

func (repo *therapyRepository) queryAssessments() []therapy.Assessment {
	assessments := make([]therapy.Assessment, 0, len(repo.assessments.table))
	for _, asmt := range repo.assessments.table {
		assessments = append(assessments, *asmt)
	}
	sort.Slice(assessments, func(i, j int) bool {
		if assessments[i].CreatedAt.Equal(assessments[j].CreatedAt) {
			return assessments[i].ID < assessments[j].ID
		}
		return assessments[i].CreatedAt.Before(assessments[j].CreatedAt)
	})
	return assessments
}

func (repo *therapyRepository) CreateAssessment(asmt therapy.Assessment) (therapy.Assessment, error) {
	repo.assessments.mutex.Lock()
	defer repo.assessments.mutex.Unlock()

	repo.assessments.table[asmt.ID] = &asmt
	return asmt, nil
}

func (repo *therapyRepository) GetAssessmentByID(id string) (therapy.Assessment, error) {
	repo.assessments.mutex.RLock()
	defer repo.assessments.mutex.RUnlock()

	if asmt, ok := repo.assessments.table[id]; ok {
		return *asmt, nil
	}
	return therapy.Assessment{}, therapy.ErrAssessmentNotFound
}

func (repo *therapyRepository) QueryAssessmentsByTherapyID(therapyID string) ([]therapy.Assessment, error) {
	repo.assessments.mutex.RLock()
	defer repo.assessments.mutex.RUnlock()

	assessments := make([]therapy.Assessment, 0)
	for _, asmt := range repo.queryAssessments() {
		if asmt.TherapyID == therapyID {
			assessments = append(assessments, asmt)
		}
	}
	return assessments, nil
}

func (repo *therapyRepository) UpdateAssessment(asmt therapy.Assessment) (therapy.Assessment, error) {
	repo.assessments.mutex.Lock()
	defer repo.assessments.mutex.Unlock()

	if _, ok := repo.assessments.table[asmt.ID]; !ok {
		return therapy.Assessment{}, therapy.ErrAssessmentNotFound
	}
	repo.assessments.table[asmt.ID] = &asmt
	return asmt, nil
}

func (repo *therapyRepository) DeleteAssessmentsByID(ids ...string) error {
	repo.assessments.mutex.Lock()
	defer repo.assessments.mutex.Unlock()

	for _, id := range ids {
		delete(repo.assessments.table, id)
	}
	return nil
}
