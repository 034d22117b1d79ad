package mock

import (
	"context"
	"io"
	"testing"

	"github.com/surf-rdm/surfmeta/cmd/surfmeta/rest"
	"github.com/surf-rdm/surfmeta/pkg/api/types/ckan"
)

type AddResourceArgs struct {
	Id       string
	Filename string
}

type DeleteExtraArgs struct {
	Id  string
	Key string
}

func New(t *testing.T) *mockClient {
	return &mockClient{t: t}
}

// mockClient implements rest.Client by delegating to the functions set in
// Impl, recording arguments in Calls on the way. Calling a method whose
// Impl is unset fails the test.
type mockClient struct {
	t *testing.T

	Impl struct {
		CheckAuth         func(ctx context.Context) (ckan.User, error)
		Get               func(ctx context.Context, id string) (ckan.Dataset, error)
		Exists            func(ctx context.Context, id string) (bool, error)
		Create            func(ctx context.Context, ds ckan.Dataset) (ckan.Dataset, error)
		Update            func(ctx context.Context, ds ckan.Dataset) (ckan.Dataset, error)
		Delete            func(ctx context.Context, id string) error
		DeleteExtra       func(ctx context.Context, id string, key string) (ckan.Dataset, error)
		ListAll           func(ctx context.Context, includePrivate bool) ([]ckan.Dataset, error)
		FindByStoragePath func(ctx context.Context, path string) ([]ckan.Dataset, error)
		AddResource       func(ctx context.Context, id string, filename string, src io.Reader) (ckan.Resource, error)
		ResourceChecksum  func(ctx context.Context, id string, name string) (string, error)
		ListOrganizations func(ctx context.Context, withDetails bool) ([]ckan.Organization, error)
		ListGroups        func(ctx context.Context, withDetails bool) ([]ckan.Group, error)
	}

	Calls struct {
		CheckAuth         int
		Get               []string
		Exists            []string
		Create            []ckan.Dataset
		Update            []ckan.Dataset
		Delete            []string
		DeleteExtra       []DeleteExtraArgs
		ListAll           []bool
		FindByStoragePath []string
		AddResource       []AddResourceArgs
		ResourceChecksum  []string
		ListOrganizations []bool
		ListGroups        []bool
	}
}

var _ rest.Client = &mockClient{}

func (m *mockClient) CheckAuth(ctx context.Context) (ckan.User, error) {
	m.t.Helper()
	if m.Impl.CheckAuth == nil {
		m.t.Fatal("CheckAuth is not implemented")
	}
	m.Calls.CheckAuth += 1
	return m.Impl.CheckAuth(ctx)
}

func (m *mockClient) Get(ctx context.Context, id string) (ckan.Dataset, error) {
	m.t.Helper()
	if m.Impl.Get == nil {
		m.t.Fatal("Get is not implemented")
	}
	m.Calls.Get = append(m.Calls.Get, id)
	return m.Impl.Get(ctx, id)
}

func (m *mockClient) Exists(ctx context.Context, id string) (bool, error) {
	m.t.Helper()
	if m.Impl.Exists == nil {
		m.t.Fatal("Exists is not implemented")
	}
	m.Calls.Exists = append(m.Calls.Exists, id)
	return m.Impl.Exists(ctx, id)
}

func (m *mockClient) Create(ctx context.Context, ds ckan.Dataset) (ckan.Dataset, error) {
	m.t.Helper()
	if m.Impl.Create == nil {
		m.t.Fatal("Create is not implemented")
	}
	m.Calls.Create = append(m.Calls.Create, ds)
	return m.Impl.Create(ctx, ds)
}

func (m *mockClient) Update(ctx context.Context, ds ckan.Dataset) (ckan.Dataset, error) {
	m.t.Helper()
	if m.Impl.Update == nil {
		m.t.Fatal("Update is not implemented")
	}
	m.Calls.Update = append(m.Calls.Update, ds)
	return m.Impl.Update(ctx, ds)
}

func (m *mockClient) Delete(ctx context.Context, id string) error {
	m.t.Helper()
	if m.Impl.Delete == nil {
		m.t.Fatal("Delete is not implemented")
	}
	m.Calls.Delete = append(m.Calls.Delete, id)
	return m.Impl.Delete(ctx, id)
}

func (m *mockClient) DeleteExtra(ctx context.Context, id string, key string) (ckan.Dataset, error) {
	m.t.Helper()
	if m.Impl.DeleteExtra == nil {
		m.t.Fatal("DeleteExtra is not implemented")
	}
	m.Calls.DeleteExtra = append(m.Calls.DeleteExtra, DeleteExtraArgs{Id: id, Key: key})
	return m.Impl.DeleteExtra(ctx, id, key)
}

func (m *mockClient) ListAll(ctx context.Context, includePrivate bool) ([]ckan.Dataset, error) {
	m.t.Helper()
	if m.Impl.ListAll == nil {
		m.t.Fatal("ListAll is not implemented")
	}
	m.Calls.ListAll = append(m.Calls.ListAll, includePrivate)
	return m.Impl.ListAll(ctx, includePrivate)
}

func (m *mockClient) FindByStoragePath(ctx context.Context, path string) ([]ckan.Dataset, error) {
	m.t.Helper()
	if m.Impl.FindByStoragePath == nil {
		m.t.Fatal("FindByStoragePath is not implemented")
	}
	m.Calls.FindByStoragePath = append(m.Calls.FindByStoragePath, path)
	return m.Impl.FindByStoragePath(ctx, path)
}

func (m *mockClient) AddResource(ctx context.Context, id string, filename string, src io.Reader) (ckan.Resource, error) {
	m.t.Helper()
	if m.Impl.AddResource == nil {
		m.t.Fatal("AddResource is not implemented")
	}
	m.Calls.AddResource = append(m.Calls.AddResource, AddResourceArgs{Id: id, Filename: filename})
	return m.Impl.AddResource(ctx, id, filename, src)
}

func (m *mockClient) ResourceChecksum(ctx context.Context, id string, name string) (string, error) {
	m.t.Helper()
	if m.Impl.ResourceChecksum == nil {
		m.t.Fatal("ResourceChecksum is not implemented")
	}
	m.Calls.ResourceChecksum = append(m.Calls.ResourceChecksum, id)
	return m.Impl.ResourceChecksum(ctx, id, name)
}

func (m *mockClient) ListOrganizations(ctx context.Context, withDetails bool) ([]ckan.Organization, error) {
	m.t.Helper()
	if m.Impl.ListOrganizations == nil {
		m.t.Fatal("ListOrganizations is not implemented")
	}
	m.Calls.ListOrganizations = append(m.Calls.ListOrganizations, withDetails)
	return m.Impl.ListOrganizations(ctx, withDetails)
}

func (m *mockClient) ListGroups(ctx context.Context, withDetails bool) ([]ckan.Group, error) {
	m.t.Helper()
	if m.Impl.ListGroups == nil {
		m.t.Fatal("ListGroups is not implemented")
	}
	m.Calls.ListGroups = append(m.Calls.ListGroups, withDetails)
	return m.Impl.ListGroups(ctx, withDetails)
}
