package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mtunza/tiba/core/child"
	"github.com/mtunza/tiba/core/document"
	"github.com/mtunza/tiba/core/listing"
)

type documentApi struct {
	svc      document.Service
	childSvc child.Service
}

func registerDocumentAPI(cg, pg *echo.Group, svc document.Service, childSvc child.Service) {
	api := documentApi{svc: svc, childSvc: childSvc}

	// counselor endpoints
	cdg := cg.Group("/documents")
	cdg.GET("", api.list)
	cdg.POST("", api.create)
	cdg.GET("/:id", api.retrieve)
	cdg.PUT("/:id", api.update)
	cdg.DELETE("", api.destroyMultiple)

	// parent endpoints (read-only)
	pdg := pg.Group("/documents")
	pdg.GET("", api.listOwn)
}

func documentDescriptor() listing.Descriptor[document.Document] {
	return listing.Descriptor[document.Document]{
		ID: func(d document.Document) string { return d.ID },
		SearchFields: []func(document.Document) string{
			func(d document.Document) string { return d.Name },
		},
		Filters: map[string]func(document.Document, string) bool{
			"content_type": func(d document.Document, val string) bool {
				return strings.EqualFold(d.ContentType, val)
			},
			"child_id": func(d document.Document, val string) bool {
				return d.ChildID == val
			},
		},
		SortKeys: map[string]func(a, b document.Document) int{
			"name": func(a, b document.Document) int {
				return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
			},
			"size": func(a, b document.Document) int {
				switch {
				case a.Size < b.Size:
					return -1
				case a.Size > b.Size:
					return 1
				}
				return 0
			},
		},
	}
}

func (api *documentApi) list(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	docs, err := api.svc.Filter(document.QueryFilter{OwnerID: actor.ID})
	if err != nil {
		return errors.Wrap(err, "filtering documents")
	}

	view := listing.NewView(documentDescriptor(), docs)
	return ctx.JSON(http.StatusOK, applyListParams(view, bindListParams(ctx, "content_type", "child_id")))
}

// listOwn lists documents attached to the parent's children.
func (api *documentApi) listOwn(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	children, err := api.childSvc.Filter(child.QueryFilter{ParentID: actor.ID})
	if err != nil {
		return errors.Wrap(err, "filtering children")
	}

	docs := make([]document.Document, 0)
	for _, chd := range children {
		childDocs, err := api.svc.Filter(document.QueryFilter{ChildID: chd.ID})
		if err != nil {
			return errors.Wrap(err, "filtering documents")
		}
		docs = append(docs, childDocs...)
	}

	view := listing.NewView(documentDescriptor(), docs)
	return ctx.JSON(http.StatusOK, applyListParams(view, bindListParams(ctx, "content_type", "child_id")))
}

func (api *documentApi) create(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data document.NewDocument
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDocument")
	}
	if err := data.Validate(appValidator); err != nil {
		return err
	}

	doc, err := api.svc.Create(actor, data)
	if err != nil {
		return errors.Wrap(err, "creating document")
	}
	return ctx.JSON(http.StatusCreated, doc)
}

func (api *documentApi) retrieve(ctx echo.Context) error {
	doc, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting document")
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *documentApi) update(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data document.UpdateDocument
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDocument")
	}
	if err := data.Validate(appValidator); err != nil {
		return err
	}

	doc, err := api.svc.Update(actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating document")
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *documentApi) destroyMultiple(ctx echo.Context) error {
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

	if err := api.svc.Delete(actor, data.IDs...); err != nil {
		return errors.Wrap(err, "deleting documents")
	}
	return ctx.NoContent(http.StatusNoContent)
}
