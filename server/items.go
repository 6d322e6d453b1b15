package server

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/fulldump/box"
)

func listItems(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	resource, err := GetStore(ctx).Resource(box.GetUrlParameter(ctx, "resource"))
	if err != nil {
		return err
	}

	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		return err
	}

	items, err := resource.List(filter)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, items)
}

func createItem(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	resource, err := GetStore(ctx).Resource(box.GetUrlParameter(ctx, "resource"))
	if err != nil {
		return err
	}

	item, err := readItem(r)
	if err != nil {
		return err
	}

	created, err := resource.Create(item)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, created)
}

func getItem(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	resource, err := GetStore(ctx).Resource(box.GetUrlParameter(ctx, "resource"))
	if err != nil {
		return err
	}

	item, err := resource.Get(box.GetUrlParameter(ctx, "id"))
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, item)
}

func replaceItem(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	resource, err := GetStore(ctx).Resource(box.GetUrlParameter(ctx, "resource"))
	if err != nil {
		return err
	}

	item, err := readItem(r)
	if err != nil {
		return err
	}

	replaced, created, err := resource.Replace(box.GetUrlParameter(ctx, "id"), item)
	if err != nil {
		return err
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return writeJSON(w, status, replaced)
}

func patchItem(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	resource, err := GetStore(ctx).Resource(box.GetUrlParameter(ctx, "resource"))
	if err != nil {
		return err
	}

	patch, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	patched, err := resource.Patch(box.GetUrlParameter(ctx, "id"), patch)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, patched)
}

func deleteItem(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	resource, err := GetStore(ctx).Resource(box.GetUrlParameter(ctx, "resource"))
	if err != nil {
		return err
	}

	if err := resource.Delete(box.GetUrlParameter(ctx, "id")); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
