package therapy_test

import (
	"testing"
	"time"

	"github.com/mtunza/tiba/core"
	"github.com/mtunza/tiba/core/authz"
	"github.com/mtunza/tiba/core/child"
	"github.com/mtunza/tiba/core/therapy"
	"github.com/mtunza/tiba/core/user"
	"github.com/mtunza/tiba/services/email"
	"github.com/mtunza/tiba/storage/database/inmem"
)

type testEnv struct {
	svc    therapy.Service
	chdSvc child.Service
	usrSvc user.Service
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewServiceMock(conf, inmemdb.NewUserRepository(db), mailSvc)
	chdSvc := child.NewService(inmemdb.NewChildRepository(db))
	svc := therapy.NewService(conf, inmemdb.NewTherapyRepository(db), chdSvc, usrSvc, mailSvc)
	return &testEnv{svc: svc, chdSvc: chdSvc, usrSvc: usrSvc}
}

func (env *testEnv) createUser(t *testing.T, uname string, role user.Role) user.User {
	t.Helper()
	usr, err := env.usrSvc.Create(user.NewUser{
		Name:     uname,
		Username: uname,
		Email:    uname + "@test.cd",
		Role:     role,
		Password: "p4ssw0rd!",
	})
	if err != nil {
		t.Fatalf("createUser(%s) failed: %v", uname, err)
	}
	return usr
}

func (env *testEnv) createChild(t *testing.T, name, parentID, counselorID string) child.Child {
	t.Helper()
	chd, err := env.chdSvc.Create(child.NewChild{
		Name:        name,
		Birthdate:   time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC),
		ParentID:    parentID,
		CounselorID: counselorID,
	})
	if err != nil {
		t.Fatalf("createChild(%s) failed: %v", name, err)
	}
	return chd
}

func (env *testEnv) createSession(t *testing.T, actor *authz.Actor, childID, topic string) therapy.Session {
	t.Helper()
	sess, err := env.svc.CreateSession(actor, therapy.NewSession{
		ChildID:     childID,
		Topic:       topic,
		ScheduledAt: time.Now().Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("createSession(%s) failed: %v", topic, err)
	}
	return sess
}

func TestCreateSession(t *testing.T) {
	env := setup(t)

	counselor := env.createUser(t, "counselor1", user.RoleCounselor)
	parent := env.createUser(t, "parent1", user.RoleParent)
	chd := env.createChild(t, "Sam", parent.ID, counselor.ID)

	t.Run("counselor owns the created session", func(t *testing.T) {
		sess := env.createSession(t, authz.ActorFor(counselor), chd.ID, "Intake")
		if sess.OwnerID != counselor.ID {
			t.Errorf("OwnerID = %s, want %s", sess.OwnerID, counselor.ID)
		}
		if sess.Status != therapy.StatusScheduled {
			t.Errorf("Status = %s, want %s", sess.Status, therapy.StatusScheduled)
		}
	})

	t.Run("parent cannot create", func(t *testing.T) {
		_, err := env.svc.CreateSession(authz.ActorFor(parent), therapy.NewSession{
			ChildID: chd.ID, Topic: "Nope", ScheduledAt: time.Now(),
		})
		if err != therapy.ErrPermissionDenied {
			t.Errorf("err = %v, want %v", err, therapy.ErrPermissionDenied)
		}
	})

	t.Run("nil actor cannot create", func(t *testing.T) {
		_, err := env.svc.CreateSession(nil, therapy.NewSession{
			ChildID: chd.ID, Topic: "Nope", ScheduledAt: time.Now(),
		})
		if err != therapy.ErrPermissionDenied {
			t.Errorf("err = %v, want %v", err, therapy.ErrPermissionDenied)
		}
	})

	t.Run("unknown child is a validation error", func(t *testing.T) {
		_, err := env.svc.CreateSession(authz.ActorFor(counselor), therapy.NewSession{
			ChildID: "nope", Topic: "Nope", ScheduledAt: time.Now(),
		})
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("err = %T, want *core.ValidationError", err)
		}
	})
}

func TestSessionMutationOwnership(t *testing.T) {
	env := setup(t)

	owner := env.createUser(t, "owner", user.RoleCounselor)
	other := env.createUser(t, "other", user.RoleCounselor)
	parent := env.createUser(t, "parent1", user.RoleParent)
	chd := env.createChild(t, "Sam", parent.ID, owner.ID)
	sess := env.createSession(t, authz.ActorFor(owner), chd.ID, "Intake")

	update := therapy.UpdateSession{
		Topic: "Renamed", Status: therapy.StatusCompleted, ScheduledAt: sess.ScheduledAt,
	}

	t.Run("owner can update", func(t *testing.T) {
		got, err := env.svc.UpdateSession(authz.ActorFor(owner), sess.ID, update)
		if err != nil {
			t.Fatalf("UpdateSession() failed: %v", err)
		}
		if got.Topic != "Renamed" || got.Status != therapy.StatusCompleted {
			t.Errorf("got %s/%s, want Renamed/completed", got.Topic, got.Status)
		}
	})

	t.Run("other counselor cannot update", func(t *testing.T) {
		if _, err := env.svc.UpdateSession(authz.ActorFor(other), sess.ID, update); err != therapy.ErrPermissionDenied {
			t.Errorf("err = %v, want %v", err, therapy.ErrPermissionDenied)
		}
	})

	t.Run("parent cannot update", func(t *testing.T) {
		if _, err := env.svc.UpdateSession(authz.ActorFor(parent), sess.ID, update); err != therapy.ErrPermissionDenied {
			t.Errorf("err = %v, want %v", err, therapy.ErrPermissionDenied)
		}
	})

	t.Run("nil actor cannot update", func(t *testing.T) {
		if _, err := env.svc.UpdateSession(nil, sess.ID, update); err != therapy.ErrPermissionDenied {
			t.Errorf("err = %v, want %v", err, therapy.ErrPermissionDenied)
		}
	})

	t.Run("other counselor cannot delete", func(t *testing.T) {
		if err := env.svc.DeleteSessions(authz.ActorFor(other), sess.ID); err != therapy.ErrPermissionDenied {
			t.Errorf("err = %v, want %v", err, therapy.ErrPermissionDenied)
		}
	})

	t.Run("advisory check mirrors enforcement", func(t *testing.T) {
		if !env.svc.CanMutateSession(sess.ID, authz.ActorFor(owner)) {
			t.Error("CanMutateSession(owner) = false, want true")
		}
		if env.svc.CanMutateSession(sess.ID, authz.ActorFor(other)) {
			t.Error("CanMutateSession(other) = true, want false")
		}
		if env.svc.CanMutateSession("nope", authz.ActorFor(owner)) {
			t.Error("CanMutateSession(unknown) = true, want false")
		}
	})
}

func TestAssessmentOwnershipViaSession(t *testing.T) {
	env := setup(t)

	owner := env.createUser(t, "owner", user.RoleCounselor)
	other := env.createUser(t, "other", user.RoleCounselor)
	parent := env.createUser(t, "parent1", user.RoleParent)
	chd := env.createChild(t, "Sam", parent.ID, owner.ID)
	sess := env.createSession(t, authz.ActorFor(owner), chd.ID, "Intake")

	newAsmt := therapy.NewAssessment{
		TherapyID:  sess.ID,
		Kind:       therapy.KindPretest,
		Score:      55,
		RecordedAt: time.Now().UTC(),
	}

	t.Run("session owner records", func(t *testing.T) {
		asmt, err := env.svc.CreateAssessment(authz.ActorFor(owner), newAsmt)
		if err != nil {
			t.Fatalf("CreateAssessment() failed: %v", err)
		}
		if asmt.TherapyID != sess.ID {
			t.Errorf("TherapyID = %s, want %s", asmt.TherapyID, sess.ID)
		}

		score := 80
		updated, err := env.svc.UpdateAssessment(authz.ActorFor(owner), asmt.ID, therapy.UpdateAssessment{Score: &score})
		if err != nil {
			t.Fatalf("UpdateAssessment() failed: %v", err)
		}
		if updated.Score != 80 {
			t.Errorf("Score = %d, want 80", updated.Score)
		}

		if _, err := env.svc.UpdateAssessment(authz.ActorFor(other), asmt.ID, therapy.UpdateAssessment{Score: &score}); err != therapy.ErrPermissionDenied {
			t.Errorf("err = %v, want %v", err, therapy.ErrPermissionDenied)
		}
		if err := env.svc.DeleteAssessments(authz.ActorFor(other), asmt.ID); err != therapy.ErrPermissionDenied {
			t.Errorf("err = %v, want %v", err, therapy.ErrPermissionDenied)
		}
		if err := env.svc.DeleteAssessments(authz.ActorFor(owner), asmt.ID); err != nil {
			t.Errorf("DeleteAssessments() failed: %v", err)
		}
	})

	t.Run("non-owner cannot record", func(t *testing.T) {
		if _, err := env.svc.CreateAssessment(authz.ActorFor(other), newAsmt); err != therapy.ErrPermissionDenied {
			t.Errorf("err = %v, want %v", err, therapy.ErrPermissionDenied)
		}
	})

	t.Run("unknown session fails closed", func(t *testing.T) {
		bad := newAsmt
		bad.TherapyID = "nope"
		if _, err := env.svc.CreateAssessment(authz.ActorFor(owner), bad); err != therapy.ErrPermissionDenied {
			t.Errorf("err = %v, want %v", err, therapy.ErrPermissionDenied)
		}
	})
}

func TestSessionsForScoping(t *testing.T) {
	env := setup(t)

	counselor1 := env.createUser(t, "counselor1", user.RoleCounselor)
	counselor2 := env.createUser(t, "counselor2", user.RoleCounselor)
	parent1 := env.createUser(t, "parent1", user.RoleParent)
	parent2 := env.createUser(t, "parent2", user.RoleParent)

	chd1 := env.createChild(t, "Sam", parent1.ID, counselor1.ID)
	chd2 := env.createChild(t, "Alex", parent2.ID, counselor2.ID)

	env.createSession(t, authz.ActorFor(counselor1), chd1.ID, "C1 S1")
	env.createSession(t, authz.ActorFor(counselor1), chd2.ID, "C1 S2")
	env.createSession(t, authz.ActorFor(counselor2), chd2.ID, "C2 S1")

	tests := []struct {
		name  string
		actor *authz.Actor
		want  int
	}{
		{name: "counselor sees owned sessions", actor: authz.ActorFor(counselor1), want: 2},
		{name: "other counselor sees theirs", actor: authz.ActorFor(counselor2), want: 1},
		{name: "parent sees own children's sessions", actor: authz.ActorFor(parent1), want: 1},
		{name: "other parent sees both for their child", actor: authz.ActorFor(parent2), want: 2},
		{name: "nil actor sees nothing", actor: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions, err := env.svc.SessionsFor(tt.actor)
			if err != nil {
				t.Fatalf("SessionsFor() failed: %v", err)
			}
			if len(sessions) != tt.want {
				t.Errorf("len(sessions) = %d, want %d", len(sessions), tt.want)
			}
		})
	}
}

func TestDeleteSessionsCascadesAssessments(t *testing.T) {
	env := setup(t)

	owner := env.createUser(t, "owner", user.RoleCounselor)
	parent := env.createUser(t, "parent1", user.RoleParent)
	chd := env.createChild(t, "Sam", parent.ID, owner.ID)
	sess := env.createSession(t, authz.ActorFor(owner), chd.ID, "Intake")

	actor := authz.ActorFor(owner)
	if _, err := env.svc.CreateAssessment(actor, therapy.NewAssessment{
		TherapyID: sess.ID, Kind: therapy.KindObservation, Score: 40,
	}); err != nil {
		t.Fatalf("CreateAssessment() failed: %v", err)
	}

	if err := env.svc.DeleteSessions(actor, sess.ID); err != nil {
		t.Fatalf("DeleteSessions() failed: %v", err)
	}

	assessments, err := env.svc.QueryAssessments(sess.ID)
	if err != nil {
		t.Fatalf("QueryAssessments() failed: %v", err)
	}
	if len(assessments) != 0 {
		t.Errorf("len(assessments) = %d, want 0", len(assessments))
	}
}
