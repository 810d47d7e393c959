package aggregate

import (
	"encoding/json"

	"music-platform/internal/apperr"
)

// Result is the tagged outcome of every operation. Single entities are keyed
// by entity name in Data; listings use Page.
type Result struct {
	Success bool
	Created bool
	Message string
	Kind    apperr.Kind
	Field   string
	Data    map[string]any
	Page    *Page
}

type Page struct {
	Items  any
	Total  int
	Limit  int
	Offset int
}

// MarshalJSON flattens the result into {success, message?, error_kind?,
// field?, <entity>...} or {success, items, total, limit, offset}.
func (r Result) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Data)+5)
	for k, v := range r.Data {
		out[k] = v
	}
	out["success"] = r.Success
	if r.Message != "" {
		out["message"] = r.Message
	}
	if r.Kind != "" {
		out["error_kind"] = r.Kind
	}
	if r.Field != "" {
		out["field"] = r.Field
	}
	if r.Page != nil {
		out["items"] = r.Page.Items
		out["total"] = r.Page.Total
		out["limit"] = r.Page.Limit
		out["offset"] = r.Page.Offset
	}
	return json.Marshal(out)
}

// Status is the HTTP status the web layer should answer with.
func (r Result) Status() int {
	if r.Success && r.Created {
		return 201
	}
	return apperr.HTTPStatus(r.Kind)
}

func ok(entity string, payload any) Result {
	return Result{Success: true, Data: map[string]any{entity: payload}}
}

func created(entity string, payload any) Result {
	r := ok(entity, payload)
	r.Created = true
	return r
}

func done(msg string) Result {
	return Result{Success: true, Message: msg}
}

func page[T any](items []T, total, limit, offset int) Result {
	if items == nil {
		items = make([]T, 0)
	}
	return Result{Success: true, Page: &Page{Items: items, Total: total, Limit: limit, Offset: offset}}
}
