// Package api is the catalog of GradLink backend operations.
//
// Every method is a thin, direct mapping: one HTTP verb, one path, one
// payload, one decoded result. Nothing is cached, retried or reshaped, and
// errors come back exactly as apiclient.Client.Do produced them.
//
// Paths are relative to the client's base URL and keep the backend's
// trailing slash.
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sakif/gradlink/internal/apiclient"
)

// API exposes one method per backend operation.
type API struct {
	client *apiclient.Client
}

// New wraps client.
func New(client *apiclient.Client) *API {
	return &API{client: client}
}

// MediaURL resolves a media path from any response against the backend.
func (a *API) MediaURL(path string) string {
	return a.client.MediaURL(path)
}

// get, post... are shorthands so each catalog entry stays a one-liner.

func (a *API) get(ctx context.Context, path string, query url.Values, out any) error {
	return a.client.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (a *API) post(ctx context.Context, path string, payload apiclient.Payload, out any) error {
	return a.client.Do(ctx, http.MethodPost, path, nil, payload, out)
}

func (a *API) put(ctx context.Context, path string, payload apiclient.Payload, out any) error {
	return a.client.Do(ctx, http.MethodPut, path, nil, payload, out)
}

func (a *API) patch(ctx context.Context, path string, payload apiclient.Payload, out any) error {
	return a.client.Do(ctx, http.MethodPatch, path, nil, payload, out)
}

func (a *API) delete(ctx context.Context, path string) error {
	return a.client.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// itemPath builds "<collection>/<id>/<action...>/".
func itemPath(collection string, id int64, action ...string) string {
	p := fmt.Sprintf("%s/%d/", collection, id)
	for _, a := range action {
		p += a + "/"
	}
	return p
}
