package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mtunza/tiba/core/child"
	"github.com/mtunza/tiba/core/listing"
)

type childApi struct {
	svc child.Service
}

func registerChildAPI(cg, pg *echo.Group, svc child.Service) {
	api := childApi{svc: svc}

	// counselor endpoints
	ccg := cg.Group("/children")
	ccg.GET("", api.list)
	ccg.POST("", api.create)
	ccg.GET("/:id", api.retrieve)
	ccg.PUT("/:id", api.update)
	ccg.DELETE("", api.destroyMultiple)

	// parent endpoints (read-only)
	pcg := pg.Group("/children")
	pcg.GET("", api.listOwn)
	pcg.GET("/:id", api.retrieveOwn)
}

func childDescriptor() listing.Descriptor[child.Child] {
	return listing.Descriptor[child.Child]{
		ID: func(c child.Child) string { return c.ID },
		SearchFields: []func(child.Child) string{
			func(c child.Child) string { return c.Name },
			func(c child.Child) string { return c.Notes },
		},
		SortKeys: map[string]func(a, b child.Child) int{
			"name": func(a, b child.Child) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) },
			"birthdate": func(a, b child.Child) int {
				switch {
				case a.Birthdate.Before(b.Birthdate):
					return -1
				case a.Birthdate.After(b.Birthdate):
					return 1
				}
				return 0
			},
		},
	}
}

func (api *childApi) list(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	children, err := api.svc.Filter(child.QueryFilter{CounselorID: actor.ID})
	if err != nil {
		return errors.Wrap(err, "filtering children")
	}

	view := listing.NewView(childDescriptor(), children)
	return ctx.JSON(http.StatusOK, applyListParams(view, bindListParams(ctx)))
}

func (api *childApi) listOwn(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	children, err := api.svc.Filter(child.QueryFilter{ParentID: actor.ID})
	if err != nil {
		return errors.Wrap(err, "filtering children")
	}

	view := listing.NewView(childDescriptor(), children)
	return ctx.JSON(http.StatusOK, applyListParams(view, bindListParams(ctx)))
}

func (api *childApi) create(ctx echo.Context) error {
	var data child.NewChild
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChild")
	}
	if err := data.Validate(appValidator); err != nil {
		return err
	}

	chd, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating child")
	}
	return ctx.JSON(http.StatusCreated, chd)
}

func (api *childApi) retrieve(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	chd, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting child")
	}
	if chd.CounselorID != actor.ID {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, chd)
}

func (api *childApi) retrieveOwn(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	chd, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting child")
	}
	if chd.ParentID != actor.ID {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, chd)
}

func (api *childApi) update(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	id := ctx.Param("id")
	orig, err := api.svc.GetByID(id)
	if err != nil {
		return errors.Wrap(err, "getting child")
	}
	if orig.CounselorID != actor.ID {
		return errHttpNotFound
	}

	var data child.UpdateChild
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateChild")
	}
	if err := data.Validate(orig, appValidator); err != nil {
		return err
	}

	chd, err := api.svc.Update(id, data)
	if err != nil {
		return errors.Wrap(err, "updating child")
	}
	return ctx.JSON(http.StatusOK, chd)
}

func (api *childApi) destroyMultiple(ctx echo.Context) error {
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

	// only this counselor's children may be removed
	for _, id := range data.IDs {
		chd, err := api.svc.GetByID(id)
		if err != nil {
			return errors.Wrap(err, "getting child")
		}
		if chd.CounselorID != actor.ID {
			return errHttpForbidden
		}
	}

	if err := api.svc.Delete(data.IDs...); err != nil {
		return errors.Wrap(err, "deleting children")
	}
	return ctx.NoContent(http.StatusNoContent)
}
