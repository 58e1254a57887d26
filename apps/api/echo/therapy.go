package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mtunza/tiba/core/listing"
	"github.com/mtunza/tiba/core/therapy"
)

type therapyApi struct {
	svc therapy.Service
}

func registerTherapyAPI(cg, pg *echo.Group, svc therapy.Service) {
	api := therapyApi{svc: svc}

	// counselor endpoints
	csg := cg.Group("/sessions")
	csg.GET("", api.list)
	csg.POST("", api.create)
	csg.GET("/:id", api.retrieve)
	csg.PUT("/:id", api.update)
	csg.DELETE("", api.destroyMultiple)
	csg.GET("/:id/assessments", api.listAssessments)
	csg.POST("/:id/assessments", api.createAssessment)

	cag := cg.Group("/assessments")
	cag.PUT("/:id", api.updateAssessment)
	cag.DELETE("", api.destroyAssessments)

	// parent endpoints (read-only)
	psg := pg.Group("/sessions")
	psg.GET("", api.list)
	psg.GET("/:id", api.retrieveOwn)
	psg.GET("/:id/assessments", api.listAssessmentsOwn)
}

func sessionDescriptor() listing.Descriptor[therapy.Session] {
	return listing.Descriptor[therapy.Session]{
		ID: func(s therapy.Session) string { return s.ID },
		SearchFields: []func(therapy.Session) string{
			func(s therapy.Session) string { return s.Topic },
			func(s therapy.Session) string { return s.Notes },
		},
		Filters: map[string]func(therapy.Session, string) bool{
			"status": func(s therapy.Session, val string) bool {
				return strings.EqualFold(string(s.Status), val)
			},
		},
		SortKeys: map[string]func(a, b therapy.Session) int{
			"topic": func(a, b therapy.Session) int {
				return strings.Compare(strings.ToLower(a.Topic), strings.ToLower(b.Topic))
			},
			"scheduled_at": func(a, b therapy.Session) int {
				switch {
				case a.ScheduledAt.Before(b.ScheduledAt):
					return -1
				case a.ScheduledAt.After(b.ScheduledAt):
					return 1
				}
				return 0
			},
		},
	}
}

// SessionResponse decorates a session with the advisory mutability flag view
// code uses to render editable vs read-only affordances.
type SessionResponse struct {
	therapy.Session
	CanMutate bool `json:"can_mutate"`
}

func (api *therapyApi) list(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	sessions, err := api.svc.SessionsFor(actor)
	if err != nil {
		return errors.Wrap(err, "listing sessions")
	}

	view := listing.NewView(sessionDescriptor(), sessions)
	return ctx.JSON(http.StatusOK, applyListParams(view, bindListParams(ctx, "status")))
}

func (api *therapyApi) create(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data therapy.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err := data.Validate(appValidator); err != nil {
		return err
	}

	sess, err := api.svc.CreateSession(actor, data)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}
	return ctx.JSON(http.StatusCreated, SessionResponse{Session: sess, CanMutate: true})
}

func (api *therapyApi) retrieve(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	id := ctx.Param("id")
	sess, err := api.svc.GetSession(id)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	return ctx.JSON(http.StatusOK, SessionResponse{
		Session:   sess,
		CanMutate: api.svc.CanMutateSession(id, actor),
	})
}

// ownSession resolves a session only if it is visible to the actor's scope.
func (api *therapyApi) ownSession(ctx echo.Context, id string) (therapy.Session, error) {
	actor, err := getContextActor(ctx)
	if err != nil {
		return therapy.Session{}, errors.Wrap(err, "getting context actor")
	}
	sessions, err := api.svc.SessionsFor(actor)
	if err != nil {
		return therapy.Session{}, errors.Wrap(err, "listing sessions")
	}
	for _, sess := range sessions {
		if sess.ID == id {
			return sess, nil
		}
	}
	return therapy.Session{}, errHttpNotFound
}

func (api *therapyApi) retrieveOwn(ctx echo.Context) error {
	sess, err := api.ownSession(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SessionResponse{Session: sess})
}

func (api *therapyApi) listAssessmentsOwn(ctx echo.Context) error {
	sess, err := api.ownSession(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}

	assessments, err := api.svc.QueryAssessments(sess.ID)
	if err != nil {
		return errors.Wrap(err, "querying assessments")
	}
	if assessments == nil {
		assessments = []therapy.Assessment{}
	}
	return ctx.JSON(http.StatusOK, assessments)
}

func (api *therapyApi) update(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	id := ctx.Param("id")
	orig, err := api.svc.GetSession(id)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}

	var data therapy.UpdateSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSession")
	}
	if err := data.Validate(orig, appValidator); err != nil {
		return err
	}

	sess, err := api.svc.UpdateSession(actor, id, data)
	if err != nil {
		return errors.Wrap(err, "updating session")
	}
	return ctx.JSON(http.StatusOK, SessionResponse{Session: sess, CanMutate: true})
}

func (api *therapyApi) destroyMultiple(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data DeleteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DeleteRequest")
	}
	if err := data.Validate(appValidator); err != nil {
		return err
	}

	if err := api.svc.DeleteSessions(actor, data.IDs...); err != nil {
		return errors.Wrap(err, "deleting sessions")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *therapyApi) listAssessments(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := api.svc.GetSession(id); err != nil {
		return errors.Wrap(err, "getting session")
	}

	assessments, err := api.svc.QueryAssessments(id)
	if err != nil {
		return errors.Wrap(err, "querying assessments")
	}
	if assessments == nil {
		assessments = []therapy.Assessment{}
	}
	return ctx.JSON(http.StatusOK, assessments)
}

func (api *therapyApi) createAssessment(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data therapy.NewAssessment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssessment")
	}
	data.TherapyID = ctx.Param("id")
	if err := data.Validate(appValidator); err != nil {
		return err
	}

	asmt, err := api.svc.CreateAssessment(actor, data)
	if err != nil {
		return errors.Wrap(err, "creating assessment")
	}
	return ctx.JSON(http.StatusCreated, asmt)
}

func (api *therapyApi) updateAssessment(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data therapy.UpdateAssessment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssessment")
	}
	if err := data.Validate(appValidator); err != nil {
		return err
	}

	asmt, err := api.svc.UpdateAssessment(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating assessment")
	}
	return ctx.JSON(http.StatusOK, asmt)
}

func (api *therapyApi) destroyAssessments(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data DeleteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DeleteRequest")
	}
	if err := data.Validate(appValidator); err != nil {
		return err
	}

	if err := api.svc.DeleteAssessments(actor, data.IDs...); err != nil {
		return errors.Wrap(err, "deleting assessments")
	}
	return ctx.NoContent(http.StatusNoContent)
}
