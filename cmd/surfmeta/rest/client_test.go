package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/surf-rdm/surfmeta/cmd/surfmeta/rest"
	"github.com/surf-rdm/surfmeta/pkg/api/types/ckan"
	"github.com/surf-rdm/surfmeta/pkg/utils/try"
)

func newClient(t *testing.T, handler http.Handler) (rest.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := try.To(rest.NewClient(server.URL, "test-token")).OrFatal(t)
	return client, server
}

func respondResult(t *testing.T, w http.ResponseWriter, result any) {
	t.Helper()
	buf := try.To(json.Marshal(result)).OrFatal(t)
	fmt.Fprintf(w, `{"success": true, "result": %s}`, string(buf))
}

func respondError(w http.ResponseWriter, statusCode int, errType string, message string) {
	w.WriteHeader(statusCode)
	fmt.Fprintf(
		w,
		`{"success": false, "error": {"__type": %q, "message": %q}}`,
		errType, message,
	)
}

func TestNewClient(t *testing.T) {
	t.Run("broken url is rejected", func(t *testing.T) {
		if _, err := rest.NewClient("not a url", ""); !errors.Is(err, rest.ErrTransport) {
			t.Errorf("got %v", err)
		}
	})
}

func TestGet(t *testing.T) {
	t.Run("fetches a dataset via package_show", func(t *testing.T) {
		client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/3/action/package_show" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if r.Header.Get("Authorization") != "test-token" {
				t.Errorf("token not sent: %q", r.Header.Get("Authorization"))
			}

			payload := map[string]string{}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatal(err)
			}
			if payload["id"] != "d1" {
				t.Errorf("id: got %q", payload["id"])
			}

			respondResult(t, w, ckan.Dataset{Name: "d1", Title: "T1"})
		}))

		ds := try.To(client.Get(context.Background(), "d1")).OrFatal(t)
		if ds.Name != "d1" || ds.Title != "T1" {
			t.Errorf("got %+v", ds)
		}
	})

	t.Run("CKAN error types map onto the taxonomy", func(t *testing.T) {
		for errType, sentinel := range map[string]error{
			"Not Found Error":     rest.ErrNotFound,
			"Authorization Error": rest.ErrNotAuthorized,
			"Validation Error":    rest.ErrValidation,
			"Search Query Error":  rest.ErrTransport,
		} {
			client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				respondError(w, http.StatusConflict, errType, "nope")
			}))

			_, err := client.Get(context.Background(), "d1")
			if !errors.Is(err, sentinel) {
				t.Errorf("%s: got %v", errType, err)
			}
		}
	})

	t.Run("non-envelope response is a transport failure", func(t *testing.T) {
		client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, "<html>bad gateway</html>")
		}))

		if _, err := client.Get(context.Background(), "d1"); !errors.Is(err, rest.ErrTransport) {
			t.Errorf("got %v", err)
		}
	})
}

func TestExists(t *testing.T) {
	t.Run("not-found means false, not an error", func(t *testing.T) {
		client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusNotFound, "Not Found Error", "no such package")
		}))

		ok := try.To(client.Exists(context.Background(), "gone")).OrFatal(t)
		if ok {
			t.Error("should not exist")
		}
	})

	t.Run("other failures propagate", func(t *testing.T) {
		client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusForbidden, "Authorization Error", "denied")
		}))

		if _, err := client.Exists(context.Background(), "d1"); !errors.Is(err, rest.ErrNotAuthorized) {
			t.Errorf("got %v", err)
		}
	})
}

func TestDelete(t *testing.T) {
	t.Run("deletes, purges and verifies the dataset is gone", func(t *testing.T) {
		actions := []string{}
		client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			action := strings.TrimPrefix(r.URL.Path, "/api/3/action/")
			actions = append(actions, action)
			switch action {
			case "package_delete", "dataset_purge":
				respondResult(t, w, nil)
			case "package_show":
				respondError(w, http.StatusNotFound, "Not Found Error", "purged")
			default:
				t.Errorf("unexpected action: %s", action)
			}
		}))

		if err := client.Delete(context.Background(), "d1"); err != nil {
			t.Fatal(err)
		}

		expected := []string{"package_delete", "dataset_purge", "package_show"}
		if strings.Join(actions, ",") != strings.Join(expected, ",") {
			t.Errorf("actions: got %v", actions)
		}
	})

	t.Run("a dataset surviving its purge is a transport failure", func(t *testing.T) {
		client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			action := strings.TrimPrefix(r.URL.Path, "/api/3/action/")
			switch action {
			case "package_delete", "dataset_purge":
				respondResult(t, w, nil)
			case "package_show":
				respondResult(t, w, ckan.Dataset{Name: "d1"})
			}
		}))

		if err := client.Delete(context.Background(), "d1"); !errors.Is(err, rest.ErrTransport) {
			t.Errorf("got %v", err)
		}
	})
}

func TestDeleteExtra(t *testing.T) {
	t.Run("removes one key and pushes the full dataset back", func(t *testing.T) {
		var updated ckan.Dataset
		client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch strings.TrimPrefix(r.URL.Path, "/api/3/action/") {
			case "package_show":
				respondResult(t, w, ckan.Dataset{
					Name: "d1",
					Extras: []ckan.Extra{
						{Key: "uuid", Value: "u-1"},
						{Key: "project", Value: "hunting"},
					},
				})
			case "package_update":
				if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
					t.Fatal(err)
				}
				respondResult(t, w, updated)
			}
		}))

		ds := try.To(client.DeleteExtra(context.Background(), "d1", "project")).OrFatal(t)

		if _, ok := ds.ExtraValue("project"); ok {
			t.Error("extra not removed")
		}
		if _, ok := updated.ExtraValue("uuid"); !ok {
			t.Error("unrelated extra lost")
		}
	})

	t.Run("missing key is ErrNotFound and nothing is pushed", func(t *testing.T) {
		client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch strings.TrimPrefix(r.URL.Path, "/api/3/action/") {
			case "package_show":
				respondResult(t, w, ckan.Dataset{Name: "d1"})
			case "package_update":
				t.Error("update should not be called")
			}
		}))

		_, err := client.DeleteExtra(context.Background(), "d1", "nope")
		if !errors.Is(err, rest.ErrNotFound) {
			t.Errorf("got %v", err)
		}
	})
}

func TestListAll(t *testing.T) {
	t.Run("paginates until a short page", func(t *testing.T) {
		pageSizes := []int{1000, 3}
		client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload := struct {
				Rows           int  `json:"rows"`
				Start          int  `json:"start"`
				IncludePrivate bool `json:"include_private"`
			}{}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatal(err)
			}
			if payload.Rows != 1000 {
				t.Errorf("rows: got %d", payload.Rows)
			}
			if !payload.IncludePrivate {
				t.Error("include_private not set")
			}

			page := payload.Start / 1000
			if page >= len(pageSizes) {
				t.Fatalf("unexpected start: %d", payload.Start)
			}
			results := make([]ckan.Dataset, pageSizes[page])
			for i := range results {
				results[i] = ckan.Dataset{Name: fmt.Sprintf("d%d", payload.Start+i)}
			}
			respondResult(t, w, map[string]any{"count": 1003, "results": results})
		}))

		datasets := try.To(client.ListAll(context.Background(), true)).OrFatal(t)
		if len(datasets) != 1003 {
			t.Errorf("got %d datasets", len(datasets))
		}
	})
}

func TestFindByStoragePath(t *testing.T) {
	t.Run("suffix-matches location extras over the whole catalog", func(t *testing.T) {
		client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			respondResult(t, w, map[string]any{"count": 3, "results": []ckan.Dataset{
				{Name: "d1", Extras: []ckan.Extra{
					{Key: "location", Value: "https://dcache.example/pnfs/data/a.txt"},
				}},
				{Name: "d2", Extras: []ckan.Extra{
					{Key: "location", Value: "/pnfs/data/b.txt"},
				}},
				{Name: "d3"},
			}})
		}))

		found := try.To(
			client.FindByStoragePath(context.Background(), "/pnfs/data/a.txt"),
		).OrFatal(t)
		if len(found) != 1 || found[0].Name != "d1" {
			t.Errorf("got %v", found)
		}
	})
}

func TestAddResource(t *testing.T) {
	t.Run("uploads a multipart form", func(t *testing.T) {
		client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/3/action/resource_create" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Fatal(err)
			}
			if r.FormValue("package_id") != "d1" {
				t.Errorf("package_id: got %q", r.FormValue("package_id"))
			}
			if r.FormValue("name") != "data.csv" {
				t.Errorf("name: got %q", r.FormValue("name"))
			}

			file, _, err := r.FormFile("upload")
			if err != nil {
				t.Fatal(err)
			}
			defer file.Close()

			respondResult(t, w, ckan.Resource{Id: "r-1", Name: "data.csv"})
		}))

		res := try.To(client.AddResource(
			context.Background(), "d1", "data.csv", strings.NewReader("a,b\n1,2\n"),
		)).OrFatal(t)
		if res.Id != "r-1" {
			t.Errorf("got %+v", res)
		}
	})
}

func TestListOrganizations(t *testing.T) {
	t.Run("bare names without details", func(t *testing.T) {
		client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload := map[string]any{}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatal(err)
			}
			if _, ok := payload["all_fields"]; ok {
				t.Error("all_fields should not be requested")
			}
			respondResult(t, w, []string{"org1", "org2"})
		}))

		orgs := try.To(client.ListOrganizations(context.Background(), false)).OrFatal(t)
		if len(orgs) != 2 || orgs[0].Name != "org1" || orgs[1].Name != "org2" {
			t.Errorf("got %v", orgs)
		}
	})

	t.Run("full records with details", func(t *testing.T) {
		client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload := map[string]any{}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatal(err)
			}
			if all, ok := payload["all_fields"].(bool); !ok || !all {
				t.Error("all_fields not requested")
			}
			respondResult(t, w, []ckan.Organization{{Name: "org1", Title: "Org One"}})
		}))

		orgs := try.To(client.ListOrganizations(context.Background(), true)).OrFatal(t)
		if len(orgs) != 1 || orgs[0].Title != "Org One" {
			t.Errorf("got %v", orgs)
		}
	})
}

func TestCheckAuth(t *testing.T) {
	t.Run("resolves the token owner", func(t *testing.T) {
		client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/3/action/user_show" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			respondResult(t, w, ckan.User{Name: "jdoe", DisplayName: "J. Doe"})
		}))

		user := try.To(client.CheckAuth(context.Background())).OrFatal(t)
		if user.Name != "jdoe" {
			t.Errorf("got %+v", user)
		}
	})

	t.Run("a bad token is ErrNotAuthorized", func(t *testing.T) {
		client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusForbidden, "Authorization Error", "bad token")
		}))

		if _, err := client.CheckAuth(context.Background()); !errors.Is(err, rest.ErrNotAuthorized) {
			t.Errorf("got %v", err)
		}
	})
}
