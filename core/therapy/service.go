package therapy

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mtunza/tiba/core"
	"github.com/mtunza/tiba/core/authz"
	"github.com/mtunza/tiba/core/child"
	"github.com/mtunza/tiba/core/user"
)

var (
	// errors
	ErrSessionNotFound    = core.NotFoundError("therapy session")
	ErrAssessmentNotFound = core.NotFoundError("assessment")
	ErrPermissionDenied   = core.PermissionDeniedError()
)

type (
	Repository interface {
		CreateSession(s Session) (Session, error)
		QueryAllSessions() ([]Session, error)
		GetSessionByID(id string) (Session, error)
		// FilterSessions applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Session.Topic or Session.Notes.
		FilterSessions(filter QueryFilter) ([]Session, error)
		UpdateSession(s Session) (Session, error)
		// DeleteSessionsByID also deletes the sessions' assessments.
		DeleteSessionsByID(ids ...string) error

		CreateAssessment(a Assessment) (Assessment, error)
		GetAssessmentByID(id string) (Assessment, error)
		QueryAssessmentsByTherapyID(therapyID string) ([]Assessment, error)
		UpdateAssessment(a Assessment) (Assessment, error)
		DeleteAssessmentsByID(ids ...string) error
	}

	// ChildDirectory is the slice of the child service the therapy service
	// needs; child.Service satisfies it.
	ChildDirectory interface {
		GetByID(id string) (child.Child, error)
		Filter(filter child.QueryFilter) ([]child.Child, error)
	}

	// UserDirectory resolves parent accounts for notifications; user.Service
	// satisfies it.
	UserDirectory interface {
		GetByID(id string) (user.User, error)
	}

	Service interface {
		CreateSession(actor *authz.Actor, ns NewSession) (Session, error)
		GetSession(id string) (Session, error)
		FilterSessions(filter QueryFilter) ([]Session, error)
		// SessionsFor scopes the session list to the actor: counselors see the
		// sessions they own, parents see their children's sessions.
		SessionsFor(actor *authz.Actor) ([]Session, error)
		UpdateSession(actor *authz.Actor, id string, us UpdateSession) (Session, error)
		DeleteSessions(actor *authz.Actor, ids ...string) error

		CreateAssessment(actor *authz.Actor, na NewAssessment) (Assessment, error)
		GetAssessment(id string) (Assessment, error)
		QueryAssessments(therapyID string) ([]Assessment, error)
		UpdateAssessment(actor *authz.Actor, id string, ua UpdateAssessment) (Assessment, error)
		DeleteAssessments(actor *authz.Actor, ids ...string) error

		// CanMutateSession is the advisory check view code uses to decide
		// between editable and read-only affordances.
		CanMutateSession(id string, actor *authz.Actor) bool
	}

	service struct {
		repo     Repository
		children ChildDirectory
		users    UserDirectory
		mailSvc  core.EmailService
		resolver *authz.Resolver
		conf     *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(conf *core.Config, repo Repository, children ChildDirectory, users UserDirectory, mailSvc core.EmailService) Service {
	return &service{
		repo:     repo,
		children: children,
		users:    users,
		mailSvc:  mailSvc,
		resolver: authz.NewResolver(sessionSource{repo}),
		conf:     conf,
	}
}

// sessionSource adapts the repository to authz's owner resolution.
type sessionSource struct {
	repo Repository
}

func (src sessionSource) OwnedSessionByID(id string) (authz.Owned, error) {
	sess, err := src.repo.GetSessionByID(id)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (svc *service) CreateSession(actor *authz.Actor, ns NewSession) (Session, error) {
	// only counselors own sessions
	if actor == nil || actor.Role != user.RoleCounselor {
		return Session{}, ErrPermissionDenied
	}
	chd, err := svc.children.GetByID(ns.ChildID)
	if err != nil {
		return Session{}, core.NewValidationError(err, core.FieldError{Field: "child_id", Error: err.Error()})
	}

	now := time.Now().UTC()
	sess, err := svc.repo.CreateSession(Session{
		ID:          uuid.New().String(),
		OwnerID:     actor.ID,
		ChildID:     chd.ID,
		Topic:       ns.Topic,
		Notes:       ns.Notes,
		Status:      StatusScheduled,
		ScheduledAt: ns.ScheduledAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return Session{}, err
	}
	svc.notifySessionScheduled(sess, chd)
	return sess, nil
}

func (svc *service) GetSession(id string) (Session, error) {
	return svc.repo.GetSessionByID(id)
}

func (svc *service) FilterSessions(filter QueryFilter) ([]Session, error) {
	return svc.repo.FilterSessions(filter)
}

func (svc *service) SessionsFor(actor *authz.Actor) ([]Session, error) {
	if actor == nil {
		return []Session{}, nil
	}
	switch actor.Role {
	case user.RoleCounselor:
		return svc.repo.FilterSessions(QueryFilter{OwnerID: actor.ID})
	case user.RoleParent:
		children, err := svc.childrenOf(actor.ID)
		if err != nil {
			return nil, errors.Wrap(err, "listing parent's children")
		}
		if len(children) == 0 {
			return []Session{}, nil
		}
		ids := make([]string, 0, len(children))
		for _, chd := range children {
			ids = append(ids, chd.ID)
		}
		return svc.repo.FilterSessions(QueryFilter{ChildIDs: ids})
	default:
		return []Session{}, nil
	}
}

func (svc *service) UpdateSession(actor *authz.Actor, id string, us UpdateSession) (Session, error) {
	sess, err := svc.repo.GetSessionByID(id)
	if err != nil {
		return Session{}, err
	}
	if !authz.CanMutate(sess, actor) {
		return Session{}, ErrPermissionDenied
	}
	sess.Topic = us.Topic
	sess.Notes = us.Notes
	sess.Status = us.Status
	sess.ScheduledAt = us.ScheduledAt
	sess.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSession(sess)
}

func (svc *service) DeleteSessions(actor *authz.Actor, ids ...string) error {
	for _, id := range ids {
		sess, err := svc.repo.GetSessionByID(id)
		if err != nil {
			return err
		}
		if !authz.CanMutate(sess, actor) {
			return ErrPermissionDenied
		}
	}
	return svc.repo.DeleteSessionsByID(ids...)
}

func (svc *service) CreateAssessment(actor *authz.Actor, na NewAssessment) (Assessment, error) {
	// the assessment's effective owner is its session's owner; resolution
	// failure is treated identically to "not authorized"
	if !svc.resolver.CanMutateOwnedBy(na.TherapyID, actor) {
		return Assessment{}, ErrPermissionDenied
	}

	now := time.Now().UTC()
	asmt, err := svc.repo.CreateAssessment(Assessment{
		ID:         uuid.New().String(),
		TherapyID:  na.TherapyID,
		Kind:       na.Kind,
		Score:      na.Score,
		Summary:    na.Summary,
		RecordedAt: na.RecordedAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return Assessment{}, err
	}
	svc.notifyAssessmentRecorded(asmt)
	return asmt, nil
}

func (svc *service) GetAssessment(id string) (Assessment, error) {
	return svc.repo.GetAssessmentByID(id)
}

func (svc *service) QueryAssessments(therapyID string) ([]Assessment, error) {
	return svc.repo.QueryAssessmentsByTherapyID(therapyID)
}

func (svc *service) UpdateAssessment(actor *authz.Actor, id string, ua UpdateAssessment) (Assessment, error) {
	asmt, err := svc.repo.GetAssessmentByID(id)
	if err != nil {
		return Assessment{}, err
	}
	if !svc.resolver.CanMutateOwnedBy(asmt.TherapyID, actor) {
		return Assessment{}, ErrPermissionDenied
	}
	if ua.Score != nil {
		asmt.Score = *ua.Score
	}
	if ua.Summary != "" {
		asmt.Summary = ua.Summary
	}
	asmt.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAssessment(asmt)
}

func (svc *service) DeleteAssessments(actor *authz.Actor, ids ...string) error {
	for _, id := range ids {
		asmt, err := svc.repo.GetAssessmentByID(id)
		if err != nil {
			return err
		}
		if !svc.resolver.CanMutateOwnedBy(asmt.TherapyID, actor) {
			return ErrPermissionDenied
		}
	}
	return svc.repo.DeleteAssessmentsByID(ids...)
}

func (svc *service) CanMutateSession(id string, actor *authz.Actor) bool {
	return svc.resolver.CanMutateOwnedBy(id, actor)
}

func (svc *service) childrenOf(parentID string) ([]child.Child, error) {
	return svc.children.Filter(child.QueryFilter{ParentID: parentID})
}

func (svc *service) notifySessionScheduled(sess Session, chd child.Child) {
	parent, err := svc.users.GetByID(chd.ParentID)
	if err != nil {
		return // notification only; the session is already created
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: parent.Name, Address: parent.Email}},
		Subject: "Therapy session scheduled",
		BodyStr: fmt.Sprintf(
			"A therapy session for %s (%s) has been scheduled on %s.",
			chd.Name, sess.Topic, sess.ScheduledAt.Format("Mon, 02 Jan 2006 15:04"),
		),
	})
}

func (svc *service) notifyAssessmentRecorded(asmt Assessment) {
	sess, err := svc.repo.GetSessionByID(asmt.TherapyID)
	if err != nil {
		return
	}
	chd, err := svc.children.GetByID(sess.ChildID)
	if err != nil {
		return
	}
	parent, err := svc.users.GetByID(chd.ParentID)
	if err != nil {
		return // notification only; the assessment is already recorded
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: parent.Name, Address: parent.Email}},
		Subject: "Assessment recorded",
		BodyStr: fmt.Sprintf(
			"A %s assessment has been recorded for %s (%s).",
			asmt.Kind, chd.Name, sess.Topic,
		),
	})
}
