// Package authz answers, synchronously and without side effects, whether the
// current actor may mutate a given owned record.
//
// Ownership, not role, is the gate: a record may only be mutated by the
// counselor identified by its owner ID. Parents never own records and so are
// always denied, which is correct because parents are read-only over therapy
// data. Whenever either side of the question is missing (record still
// loading, actor unauthenticated, owner lookup failed) the answer fails
// closed to "not authorized"; callers render a read-only affordance, never an
// error.
package authz

import (
	"github.com/mtunza/tiba/core/user"
)

// Actor is the authenticated principal making a request in the current session.
type Actor struct {
	ID   string
	Role user.Role
}

// ActorFor derives an Actor from a fetched User.
func ActorFor(usr user.User) *Actor {
	return &Actor{ID: usr.ID, Role: usr.Role}
}

// Owned is any record carrying an owner ID used as the sole authorization
// gate for mutation. The owner is established at creation time and never
// changes.
type Owned interface {
	Owner() string
}

// CanMutate reports whether actor may create/edit/delete rec or records owned
// indirectly through it. It is a pure predicate over already-fetched data and
// must be re-evaluated whenever rec or actor (re)load.
func CanMutate(rec Owned, actor *Actor) bool {
	if rec == nil || actor == nil {
		return false
	}
	return actor.ID == rec.Owner()
}

// IsReadOnly chooses between an editable and a read-only rendering of the
// same view; viewing is always allowed if the record is visible at all.
func IsReadOnly(rec Owned, actor *Actor) bool {
	return !CanMutate(rec, actor)
}

// SessionSource looks up the therapy session a child record hangs off of.
type SessionSource interface {
	OwnedSessionByID(id string) (Owned, error)
}

// Resolver evaluates CanMutate for records that have no owner of their own
// (assessments) by resolving their parent therapy session first. A failed
// lookup (deleted session, bad foreign key) is treated identically to "not
// authorized".
type Resolver struct {
	sessions SessionSource
}

func NewResolver(sessions SessionSource) *Resolver {
	return &Resolver{sessions: sessions}
}

// CanMutateOwnedBy resolves the session identified by therapyID and evaluates
// CanMutate against it, failing closed on any resolution failure.
func (r *Resolver) CanMutateOwnedBy(therapyID string, actor *Actor) bool {
	if actor == nil {
		return false
	}
	sess, err := r.sessions.OwnedSessionByID(therapyID)
	if err != nil {
		return false
	}
	return CanMutate(sess, actor)
}

// Landing routes per role; unrecognized roles fall through to the public site.
const (
	CounselorLandingPath = "/counselor/dashboard"
	ParentLandingPath    = "/parent/dashboard"
	PublicLandingPath    = "/"
)

// LandingPath maps a session's role claim to the route the user lands on.
func LandingPath(role user.Role) string {
	switch role {
	case user.RoleCounselor:
		return CounselorLandingPath
	case user.RoleParent:
		return ParentLandingPath
	default:
		return PublicLandingPath
	}
}
