package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/tripnest/backend/internal/auth"
	"github.com/tripnest/backend/internal/domain"
)

// pathUUID binds the named path parameter. On failure it writes a 400 and
// returns false.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		requestError(w, "invalid "+name+": "+err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// queryParam binds an optional form-style query parameter into dest.
// On failure it writes a 400 and returns false.
func queryParam(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		requestError(w, "invalid query parameter "+name+": "+err.Error())
		return false
	}
	return true
}

// pagination reads ?page= and ?limit= (defaults: page=1, limit=20, max=100).
func pagination(w http.ResponseWriter, r *http.Request) (domain.PaginationParams, bool) {
	var page, limit *int
	if !queryParam(w, r, "page", &page) || !queryParam(w, r, "limit", &limit) {
		return domain.PaginationParams{}, false
	}
	return domain.NewPaginationParams(page, limit), true
}

// userID returns the authenticated caller. Routes behind the authenticator
// always have one; the 401 covers a misconfigured router.
func userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
	}
	return id, ok
}

// Pagination is the page envelope of list responses.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// Page is a paginated list response.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func newPage[T any](data []T, p domain.PaginationParams, total int64) Page[T] {
	return Page[T]{Data: data, Pagination: Pagination{Page: p.Page, Limit: p.Limit, Total: total}}
}

func mapSlice[T, U any](in []T, f func(T) U) []U {
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}
