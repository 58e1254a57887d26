package echoapi

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/mtunza/tiba/core"
	"github.com/mtunza/tiba/core/listing"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true)
	return validate.Struct(lr)
}

// LoginResponse carries the signed token and the landing route for the
// authenticated role, so clients need no role-to-route mapping of their own.
type LoginResponse struct {
	Token    string `json:"token"`
	Redirect string `json:"redirect"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (prr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	prr.Email = core.CleanString(prr.Email, true)
	return validate.Struct(prr)
}

type SuccessResponse struct {
	Success string `json:"success"`
}

type DeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

func (dr *DeleteRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(dr)
}

var (
	searchParam   = "search"
	sortParam     = "sort"
	pageParam     = "page"
	pageSizeParam = "page_size"
)

// ListParams are the tabular-view controls common to all list endpoints.
// Filters holds dimension=value pairs for the dimensions the endpoint accepts.
type ListParams struct {
	Search   string
	Sort     string
	Page     int
	PageSize int
	Filters  map[string]string
}

// bindListParams reads the view controls off the query string. dims lists the
// filter dimensions this endpoint understands; unknown params are ignored.
func bindListParams(ctx echo.Context, dims ...string) ListParams {
	params := ListParams{
		Search:  core.CleanString(ctx.QueryParam(searchParam)),
		Sort:    strings.TrimSpace(ctx.QueryParam(sortParam)),
		Filters: make(map[string]string, len(dims)),
	}
	if n, err := strconv.Atoi(ctx.QueryParam(pageParam)); err == nil {
		params.Page = n
	}
	if n, err := strconv.Atoi(ctx.QueryParam(pageSizeParam)); err == nil {
		params.PageSize = n
	}
	for _, dim := range dims {
		if val := strings.TrimSpace(ctx.QueryParam(dim)); val != "" {
			params.Filters[dim] = val
		}
	}
	return params
}

// ListResponse is the paginated envelope for list endpoints. Pages carries the
// collapsed page-number sequence with -1 marking an ellipsis gap.
type ListResponse[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	LastPage int   `json:"last_page"`
	Total    int   `json:"total"`
	Pages    []int `json:"pages"`
}

// applyListParams drives a fresh view with the request's controls and snapshots
// the visible page. Unknown sort keys and filter dimensions are dropped rather
// than rejected; junk query params must not 500 a list endpoint.
func applyListParams[T any](view *listing.View[T], params ListParams) ListResponse[T] {
	for dim, val := range params.Filters {
		if view.Filterable(dim) {
			view.SetFilter(dim, val)
		}
	}
	view.SetSearch(params.Search)
	if key := strings.TrimPrefix(params.Sort, "-"); key != "" && view.Sortable(key) {
		view.SetSort(key)
		if strings.HasPrefix(params.Sort, "-") {
			view.SetSort(key) // second toggle flips to descending
		}
	}
	if params.PageSize > 0 {
		view.SetPageSize(params.PageSize)
	}
	if params.Page > 0 {
		view.SetPage(params.Page)
	}

	items := view.VisiblePage()
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{
		Items:    items,
		Page:     view.Page(),
		PageSize: view.PageSize(),
		LastPage: view.LastPage(),
		Total:    view.Total(),
		Pages:    view.PageNumbers(),
	}
}
