package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/surf-rdm/surfmeta/pkg/api/types/ckan"
)

// CKAN caps search pages at 1000 rows.
const searchPageSize = 1000

func (c *client) CheckAuth(ctx context.Context) (ckan.User, error) {
	// user_show without an id resolves to the token's own account.
	user := ckan.User{}
	if err := c.call(ctx, "user_show", map[string]string{}, &user); err != nil {
		return ckan.User{}, err
	}
	return user, nil
}

func (c *client) Get(ctx context.Context, id string) (ckan.Dataset, error) {
	ds := ckan.Dataset{}
	if err := c.call(ctx, "package_show", map[string]string{"id": id}, &ds); err != nil {
		return ckan.Dataset{}, err
	}
	return ds, nil
}

func (c *client) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := c.Get(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *client) Create(ctx context.Context, ds ckan.Dataset) (ckan.Dataset, error) {
	created := ckan.Dataset{}
	if err := c.call(ctx, "package_create", ds, &created); err != nil {
		return ckan.Dataset{}, err
	}
	return created, nil
}

func (c *client) Update(ctx context.Context, ds ckan.Dataset) (ckan.Dataset, error) {
	updated := ckan.Dataset{}
	if err := c.call(ctx, "package_update", ds, &updated); err != nil {
		return ckan.Dataset{}, err
	}
	return updated, nil
}

// Delete soft-deletes and then purges the dataset. Purge is irreversible,
// and some CKAN deployments silently skip it, so non-existence is verified
// afterwards.
func (c *client) Delete(ctx context.Context, id string) error {
	if err := c.call(ctx, "package_delete", map[string]string{"id": id}, nil); err != nil {
		return err
	}
	if err := c.call(ctx, "dataset_purge", map[string]string{"id": id}, nil); err != nil {
		return err
	}

	stillThere, err := c.Exists(ctx, id)
	if err != nil {
		return err
	}
	if stillThere {
		return fmt.Errorf("%w: dataset %s is still visible after purge", ErrTransport, id)
	}
	return nil
}

func (c *client) DeleteExtra(ctx context.Context, id string, key string) (ckan.Dataset, error) {
	ds, err := c.Get(ctx, id)
	if err != nil {
		return ckan.Dataset{}, err
	}

	kept := []ckan.Extra{}
	found := false
	for _, e := range ds.Extras {
		if e.Key == key {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return ckan.Dataset{}, fmt.Errorf(
			"%w: dataset %s has no extra %q", ErrNotFound, id, key,
		)
	}

	ds.Extras = kept
	return c.Update(ctx, ds)
}

func (c *client) ListAll(ctx context.Context, includePrivate bool) ([]ckan.Dataset, error) {
	type searchResult struct {
		Count   int            `json:"count"`
		Results []ckan.Dataset `json:"results"`
	}

	datasets := []ckan.Dataset{}
	for start := 0; ; start += searchPageSize {
		page := searchResult{}
		payload := map[string]any{
			"rows":            searchPageSize,
			"start":           start,
			"include_private": includePrivate,
		}
		if err := c.call(ctx, "package_search", payload, &page); err != nil {
			return nil, err
		}
		datasets = append(datasets, page.Results...)
		if len(page.Results) < searchPageSize {
			return datasets, nil
		}
	}
}

func (c *client) FindByStoragePath(ctx context.Context, path string) ([]ckan.Dataset, error) {
	all, err := c.ListAll(ctx, true)
	if err != nil {
		return nil, err
	}

	found := []ckan.Dataset{}
	for _, ds := range all {
		if loc, ok := ds.ExtraValue(ckan.KeyLocation); ok && strings.HasSuffix(loc, path) {
			found = append(found, ds)
		}
	}
	return found, nil
}

// AddResource uploads src as a file resource. resource_create takes a
// multipart form, not the usual JSON payload, so it bypasses call.
func (c *client) AddResource(ctx context.Context, id string, filename string, src io.Reader) (ckan.Resource, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		err := func() error {
			if err := form.WriteField("package_id", id); err != nil {
				return err
			}
			if err := form.WriteField("name", filename); err != nil {
				return err
			}
			part, err := form.CreateFormFile("upload", filename)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, src); err != nil {
				return err
			}
			return form.Close()
		}()
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.actionpath("resource_create"), pr,
	)
	if err != nil {
		return ckan.Resource{}, fmt.Errorf("%w: resource_create: %s", ErrTransport, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return ckan.Resource{}, fmt.Errorf("%w: resource_create: %s", ErrTransport, err)
	}
	defer resp.Body.Close()

	res := ckan.Resource{}
	if err := unmarshalEnvelope("resource_create", resp, &res); err != nil {
		return ckan.Resource{}, err
	}
	return res, nil
}

func (c *client) ResourceChecksum(ctx context.Context, id string, name string) (string, error) {
	ds, err := c.Get(ctx, id)
	if err != nil {
		return "", err
	}
	for _, r := range ds.Resources {
		if r.Name == name {
			return r.Hash, nil
		}
	}
	return "", fmt.Errorf("%w: dataset %s has no resource %q", ErrNotFound, id, name)
}
