package therapy

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mtunza/tiba/core"
)

// Session statuses
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Assessment kinds
type Kind string

const (
	KindPretest     Kind = "pretest"
	KindPosttest    Kind = "posttest"
	KindScreening   Kind = "screening"
	KindObservation Kind = "observation"
)

var AllKinds = []Kind{KindPretest, KindPosttest, KindScreening, KindObservation}

func (k Kind) Valid() bool {
	for _, kind := range AllKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Session is the authorization-anchor record: its owner is the counselor who
// created it, fixed at creation time. All assessment records inherit its
// ownership indirectly.
type Session struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	ChildID     string    `json:"child_id"`
	Topic       string    `json:"topic"`
	Notes       string    `json:"notes"`
	Status      Status    `json:"status"`
	ScheduledAt time.Time `json:"scheduled_at"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

func (s Session) Owner() string { return s.OwnerID }

// Assessment is a pretest/posttest/screening/observation record hanging off a
// Session. It has no owner of its own; its effective owner is always its
// session's owner and must be resolved through the session, never cached.
type Assessment struct {
	ID         string    `json:"id"`
	TherapyID  string    `json:"therapy_id"`
	Kind       Kind      `json:"kind"`
	Score      int       `json:"score"`
	Summary    string    `json:"summary"`
	RecordedAt time.Time `json:"recorded_at"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// NewSession contains information needed to schedule a new Session.
type NewSession struct {
	ChildID     string    `json:"child_id" validate:"required"`
	Topic       string    `json:"topic" validate:"required"`
	Notes       string    `json:"notes"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.Topic = core.CleanString(ns.Topic)
	ns.Notes = core.CleanString(ns.Notes)
	return validate.Struct(ns)
}

// UpdateSession defines what information may be provided to modify an
// existing Session. OwnerID and ChildID are fixed at creation.
type UpdateSession struct {
	Topic       string    `json:"topic"`
	Notes       string    `json:"notes"`
	Status      Status    `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

func (us *UpdateSession) Validate(orig Session, validate *validator.Validate) error {
	topic := core.CleanString(us.Topic)
	if topic != "" {
		us.Topic = topic
	} else {
		us.Topic = orig.Topic
	}
	us.Notes = core.CleanString(us.Notes)
	if us.Status == "" {
		us.Status = orig.Status
	}
	if us.ScheduledAt.IsZero() {
		us.ScheduledAt = orig.ScheduledAt
	}
	return validate.Struct(us)
}

// NewAssessment contains information needed to record a new Assessment.
type NewAssessment struct {
	TherapyID  string    `json:"therapy_id" validate:"required"`
	Kind       Kind      `json:"kind" validate:"required,oneof=pretest posttest screening observation"`
	Score      int       `json:"score" validate:"gte=0,lte=100"`
	Summary    string    `json:"summary"`
	RecordedAt time.Time `json:"recorded_at"`
}

func (na *NewAssessment) Validate(validate *validator.Validate) error {
	na.Summary = core.CleanString(na.Summary)
	if na.RecordedAt.IsZero() {
		na.RecordedAt = time.Now().UTC()
	}
	return validate.Struct(na)
}

// UpdateAssessment defines what information may be provided to modify an
// existing Assessment. TherapyID and Kind are fixed at creation.
type UpdateAssessment struct {
	Score   *int   `json:"score" validate:"omitempty,gte=0,lte=100"`
	Summary string `json:"summary"`
}

func (ua *UpdateAssessment) Validate(validate *validator.Validate) error {
	ua.Summary = core.CleanString(ua.Summary)
	return validate.Struct(ua)
}

type QueryFilter struct {
	Search   string   `query:"search"`
	OwnerID  string   `query:"owner_id"`
	ChildID  string   `query:"child_id"`
	ChildIDs []string `query:"-"`
	Status   Status   `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.OwnerID == "" && qf.ChildID == "" && qf.ChildIDs == nil && qf.Status == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
