package rest

import (
	"context"

	"github.com/surf-rdm/surfmeta/pkg/api/types/ckan"
	"github.com/surf-rdm/surfmeta/pkg/utils/slices"
)

// organization_list and group_list return bare name strings by default
// and full records only when all_fields is set.

func (c *client) ListOrganizations(ctx context.Context, withDetails bool) ([]ckan.Organization, error) {
	if withDetails {
		orgs := []ckan.Organization{}
		if err := c.call(
			ctx, "organization_list", map[string]any{"all_fields": true}, &orgs,
		); err != nil {
			return nil, err
		}
		return orgs, nil
	}

	names := []string{}
	if err := c.call(ctx, "organization_list", map[string]any{}, &names); err != nil {
		return nil, err
	}
	return slices.Map(names, func(name string) ckan.Organization {
		return ckan.Organization{Name: name}
	}), nil
}

func (c *client) ListGroups(ctx context.Context, withDetails bool) ([]ckan.Group, error) {
	if withDetails {
		groups := []ckan.Group{}
		if err := c.call(
			ctx, "group_list", map[string]any{"all_fields": true}, &groups,
		); err != nil {
			return nil, err
		}
		return groups, nil
	}

	names := []string{}
	if err := c.call(ctx, "group_list", map[string]any{}, &names); err != nil {
		return nil, err
	}
	return slices.Map(names, func(name string) ckan.Group {
		return ckan.Group{Name: name}
	}), nil
}
