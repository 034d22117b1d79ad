package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/surf-rdm/surfmeta/pkg/api/types/ckan"
)

// Error taxonomy for CKAN calls. Every error returned by Client wraps
// exactly one of these sentinels.
var (
	ErrNotFound      = errors.New("not found on CKAN")
	ErrNotAuthorized = errors.New("not authorized on CKAN")
	ErrValidation    = errors.New("rejected by CKAN validation")
	ErrTransport     = errors.New("CKAN request failed")
)

type Client interface {
	// CheckAuth verifies the configured token by asking CKAN who it
	// belongs to.
	CheckAuth(ctx context.Context) (ckan.User, error)

	// Get fetches one dataset by name or id.
	Get(ctx context.Context, id string) (ckan.Dataset, error)

	// Exists reports whether a dataset is visible.
	// It is get-and-catch-NotFound, not a lightweight call.
	Exists(ctx context.Context, id string) (bool, error)

	// Create registers a new dataset.
	Create(ctx context.Context, ds ckan.Dataset) (ckan.Dataset, error)

	// Update pushes the full dataset back to CKAN.
	Update(ctx context.Context, ds ckan.Dataset) (ckan.Dataset, error)

	// Delete purges a dataset irreversibly, verifying afterwards that
	// it is really gone.
	Delete(ctx context.Context, id string) error

	// DeleteExtra removes a single extras key from a dataset.
	// ErrNotFound when the dataset has no such key.
	DeleteExtra(ctx context.Context, id string, key string) (ckan.Dataset, error)

	// ListAll fetches every dataset, paginating under the hood.
	ListAll(ctx context.Context, includePrivate bool) ([]ckan.Dataset, error)

	// FindByStoragePath returns every dataset whose location extra ends
	// with path. Scans the whole catalog.
	FindByStoragePath(ctx context.Context, path string) ([]ckan.Dataset, error)

	// AddResource uploads src as a file resource of the dataset.
	AddResource(ctx context.Context, id string, filename string, src io.Reader) (ckan.Resource, error)

	// ResourceChecksum looks up the recorded hash of a named resource.
	ResourceChecksum(ctx context.Context, id string, name string) (string, error)

	ListOrganizations(ctx context.Context, withDetails bool) ([]ckan.Organization, error)
	ListGroups(ctx context.Context, withDetails bool) ([]ckan.Group, error)
}

type client struct {
	httpclient *http.Client
	api        string
	token      string
}

// NewClient creates a Client for one CKAN instance.
// token may be empty for read-only use against public instances.
func NewClient(baseUrl string, token string) (Client, error) {
	u, err := url.ParseRequestURI(baseUrl)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: broken CKAN url: %s", ErrTransport, baseUrl)
	}

	return &client{
		httpclient: new(http.Client),
		api:        strings.TrimSuffix(baseUrl, "/"),
		token:      token,
	}, nil
}

// actionpath builds the URL of a CKAN action endpoint.
func (c *client) actionpath(action string) string {
	return strings.Join([]string{c.api, "api", "3", "action", action}, "/")
}
