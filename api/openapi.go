// Package api holds the HTTP contract of the service and a request
// validator built from it.
package api

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	errors "github.com/frahmantamala/cardtracker/internal"
	"github.com/frahmantamala/cardtracker/internal/transport"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

//go:embed openapi.yml
var document []byte

// Document returns the raw OpenAPI document.
func Document() []byte {
	return document
}

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// ServeDocument handles GET /openapi.yml.
func ServeDocument(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(document)
}

// RequestValidator rejects requests whose parameters or body do not match
// the document with 400 VALIDATION_FAILED. Requests for routes the document
// does not describe pass through untouched.
func RequestValidator(doc *openapi3.T, base *transport.BaseHandler) (func(http.Handler) http.Handler, error) {
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}

	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				if err != routers.ErrPathNotFound && err != routers.ErrMethodNotAllowed {
					base.Log(r).Warn("openapi route lookup failed", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				base.Log(r).Warn("request rejected by openapi validation", "error", err)
				appErr := errors.NewValidationError("Request does not match the API contract", errors.ErrCodeValidationFailed).
					WithDetails(map[string]string{"reason": err.Error()})
				base.HandleError(w, appErr)
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}
