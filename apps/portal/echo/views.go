package echoportal

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/SaurabhAlex/school-management-web/core"
	"github.com/SaurabhAlex/school-management-web/core/resource"
	"github.com/SaurabhAlex/school-management-web/services/schoolapi"
)

// listView is a table of a page. Items is never nil, even on error.
type listView[V any] struct {
	State string `json:"state"`
	Items []V    `json:"items"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// readMode says how a view reads its resource.
type readMode int

const (
	// cached reads through the cache, for answers to a command that already refreshed it.
	cached readMode = iota
	// mount lists again from the backend, as a page does each time it is opened.
	mount
)

// loadList reads res the way mode says. A failed load becomes the error state of the view;
// only a rejected session fails the request.
func loadList[T, C, U, V any](
	ctx context.Context, res *resource.Resource[T, C, U], mode readMode, view func(T) V, fallback string,
) (listView[V], error) {
	read := res.Items
	if mode == mount {
		read = res.Fetch
	}
	items, err := read(ctx)
	if err != nil {
		if schoolapi.IsStatus(err, http.StatusUnauthorized) {
			return listView[V]{}, err
		}
		return listView[V]{State: resource.Error.String(), Items: []V{}, Error: core.ErrorMessage(err, fallback)}, nil
	}

	lv := listView[V]{State: resource.Ready.String(), Items: make([]V, len(items)), Count: len(items)}
	for i, item := range items {
		lv.Items[i] = view(item)
	}
	return lv, nil
}

// bindForm binds the request body into a new F and validates it.
func bindForm[F any, P interface {
	*F
	validatable
}](ctx echo.Context, v formValidator) (F, error) {
	var form F
	if err := ctx.Bind(&form); err != nil {
		return form, errors.Wrapf(err, "binding to %T", form)
	}
	return form, v.check(P(&form))
}

// createFrom validates the form of the request and hands it to res.
func createFrom[T, C, U any, P interface {
	*C
	validatable
}](ctx echo.Context, v formValidator, res *resource.Resource[T, C, U]) (T, error) {
	form, err := bindForm[C, P](ctx, v)
	if err != nil {
		var zero T
		return zero, err
	}
	return res.Create(ctx.Request().Context(), form)
}

func updateFrom[T, C, U any, P interface {
	*U
	validatable
}](ctx echo.Context, v formValidator, res *resource.Resource[T, C, U]) (T, error) {
	form, err := bindForm[U, P](ctx, v)
	if err != nil {
		var zero T
		return zero, err
	}
	return res.Update(ctx.Request().Context(), ctx.Param("id"), form)
}

// page runs h with the workspace of the request.
func page(h func(ctx echo.Context, w *Workspace) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		w, err := getWorkspace(ctx)
		if err != nil {
			return err
		}
		return h(ctx, w)
	}
}
