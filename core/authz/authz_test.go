package authz

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/mtunza/tiba/core/user"
)

type ownedRecord struct {
	id      string
	ownerID string
}

func (r ownedRecord) Owner() string { return r.ownerID }

func TestCanMutate(t *testing.T) {
	session := ownedRecord{id: "s1", ownerID: "c1"}
	counselor := &Actor{ID: "c1", Role: user.RoleCounselor}
	otherCounselor := &Actor{ID: "c2", Role: user.RoleCounselor}
	parent := &Actor{ID: "p1", Role: user.RoleParent}

	tests := []struct {
		name  string
		rec   Owned
		actor *Actor
		want  bool
	}{
		{name: "nil record fails closed", rec: nil, actor: counselor, want: false},
		{name: "nil actor fails closed", rec: session, actor: nil, want: false},
		{name: "both nil fails closed", rec: nil, actor: nil, want: false},
		{name: "owner may mutate", rec: session, actor: counselor, want: true},
		{name: "non-owner counselor denied", rec: session, actor: otherCounselor, want: false},
		{name: "parent denied", rec: session, actor: parent, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanMutate(tt.rec, tt.actor); got != tt.want {
				t.Errorf("CanMutate() = %v, want %v", got, tt.want)
			}
			if got := IsReadOnly(tt.rec, tt.actor); got == tt.want {
				t.Errorf("IsReadOnly() = %v, want %v", got, !tt.want)
			}
		})
	}
}

type sessionSourceStub struct {
	sessions map[string]ownedRecord
}

func (s sessionSourceStub) OwnedSessionByID(id string) (Owned, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.New("session not found")
	}
	return sess, nil
}

func TestResolver_CanMutateOwnedBy(t *testing.T) {
	src := sessionSourceStub{sessions: map[string]ownedRecord{
		"t1": {id: "t1", ownerID: "c1"},
	}}
	resolver := NewResolver(src)

	tests := []struct {
		name      string
		therapyID string
		actor     *Actor
		want      bool
	}{
		{name: "owner of resolved session", therapyID: "t1", actor: &Actor{ID: "c1", Role: user.RoleCounselor}, want: true},
		{name: "other counselor denied", therapyID: "t1", actor: &Actor{ID: "c2", Role: user.RoleCounselor}, want: false},
		{name: "missing session fails closed", therapyID: "gone", actor: &Actor{ID: "c1", Role: user.RoleCounselor}, want: false},
		{name: "nil actor fails closed", therapyID: "t1", actor: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolver.CanMutateOwnedBy(tt.therapyID, tt.actor); got != tt.want {
				t.Errorf("CanMutateOwnedBy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLandingPath(t *testing.T) {
	tests := []struct {
		name string
		role user.Role
		want string
	}{
		{name: "counselor", role: user.RoleCounselor, want: CounselorLandingPath},
		{name: "parent", role: user.RoleParent, want: ParentLandingPath},
		{name: "unknown role", role: "intruder", want: PublicLandingPath},
		{name: "absent role", role: "", want: PublicLandingPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LandingPath(tt.role); got != tt.want {
				t.Errorf("LandingPath(%q) = %q, want %q", tt.role, got, tt.want)
			}
		})
	}
}
