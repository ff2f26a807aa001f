package api

import (
	"context"
	"net/http"
)

// resource implements the get/create/update/delete endpoints shared by every
// clinic aggregate. Listing differs per aggregate and lives in its handler.
type resource[T any] struct {
	kind   string
	get    func(context.Context, int64) (*T, error)
	create func(context.Context, *T) (*T, error)
	update func(context.Context, int64, *T) (*T, error)
	remove func(context.Context, int64) error
}

func (res resource[T]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", res.kind)
	if !ok {
		return
	}

	v, err := res.get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "get "+res.kind)
		return
	}
	jsonResponse(w, http.StatusOK, v)
}

func (res resource[T]) Create(w http.ResponseWriter, r *http.Request) {
	var req T
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	v, err := res.create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, "create "+res.kind)
		return
	}
	jsonResponse(w, http.StatusCreated, v)
}

func (res resource[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", res.kind)
	if !ok {
		return
	}

	var req T
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	v, err := res.update(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err, "update "+res.kind)
		return
	}
	jsonResponse(w, http.StatusOK, v)
}

func (res resource[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", res.kind)
	if !ok {
		return
	}

	if err := res.remove(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "delete "+res.kind)
		return
	}
	message(w, res.kind+" deleted")
}
