package conf

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"

	"github.com/hectane/go-acl"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/config/open"
)

// DefaultEndpoint always has an entry in the config, aliased "demo".
const (
	DefaultEndpoint = "https://demo.ckan.org"
	DefaultAlias    = "demo"
)

var (
	ErrConfigInvalid      = errors.New("surfmeta config is invalid")
	ErrCannotCreateConfig = errors.New("cannot create config file")
	ErrCannotUpdateConfig = errors.New("cannot update config file")
	ErrNoSuchEndpoint     = errors.New("no CKAN endpoint found")
	ErrAliasTaken         = errors.New("alias already exists")
	ErrNoToken            = errors.New("no API token stored")
)

// Entry holds per-endpoint settings, keyed by the CKAN base URL.
type Entry struct {
	Alias string `json:"alias,omitempty"`
	Token string `json:"token,omitempty"`
}

// DCacheAuth records how to authenticate the external ada tool.
//
// On the wire it is the 2-element array [method, file], as the original
// config format has it.
type DCacheAuth struct {
	Method string // "macaroon" or "netrc"
	File   string
}

func (d DCacheAuth) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{d.Method, d.File})
}

func (d *DCacheAuth) UnmarshalJSON(b []byte) error {
	var pair [2]string
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	d.Method = pair[0]
	d.File = pair[1]
	return nil
}

// Config is the local surfmeta configuration.
//
// Exactly one endpoint is current; aliases are unique; the demo endpoint is
// always present. Load self-heals violations instead of failing.
type Config struct {
	Current   string            `json:"cur_ckan"`
	Endpoints map[string]*Entry `json:"ckans"`
	DCache    DCacheAuth        `json:"dcache"`

	path string
}

// DefaultPath is ~/.ckan/ckan.json, or a CWD-relative fallback when the
// home directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".ckan", "ckan.json")
}

func defaults(path string) *Config {
	return &Config{
		Current:   DefaultEndpoint,
		Endpoints: map[string]*Entry{DefaultEndpoint: {Alias: DefaultAlias}},
		DCache:    DCacheAuth{Method: "netrc", File: "~/.netrc"},
		path:      path,
	}
}

// Load reads the config file at path, creating it with defaults when absent
// and resetting it when unreadable or structurally broken.
//
// Healed problems are reported through warn; they never fail the load.
func Load(path string, warn func(format string, args ...any)) (*Config, error) {
	if warn == nil {
		warn = func(string, ...any) {}
	}

	c := defaults(path)
	buf, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := c.Save(); err != nil {
			return nil, err
		}
		return c, nil
	case err != nil:
		return nil, err
	}

	if err := json.Unmarshal(buf, c); err != nil {
		warn("%s is not valid JSON, resetting to defaults: %s", path, err)
		c = defaults(path)
		if err := c.Save(); err != nil {
			return nil, err
		}
		return c, nil
	}
	c.path = path

	if changed := c.validate(warn); changed {
		if err := c.Save(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// validate repairs the config in place and reports whether it was changed.
func (c *Config) validate(warn func(format string, args ...any)) bool {
	changed := false

	if c.Endpoints == nil {
		c.Endpoints = map[string]*Entry{}
		changed = true
	}

	aliases := map[string]bool{}
	for _, u := range sortedKeys(c.Endpoints) {
		e := c.Endpoints[u]
		if e == nil {
			c.Endpoints[u] = &Entry{}
			e = c.Endpoints[u]
			changed = true
		}
		if u != DefaultEndpoint && !IsValidURL(u) {
			warn("invalid CKAN URL %q, removing", u)
			delete(c.Endpoints, u)
			changed = true
			continue
		}
		if e.Alias != "" {
			if aliases[e.Alias] {
				warn("duplicate alias %q, removing entry %q", e.Alias, u)
				delete(c.Endpoints, u)
				changed = true
				continue
			}
			aliases[e.Alias] = true
		}
	}

	if _, ok := c.Endpoints[DefaultEndpoint]; !ok {
		c.Endpoints[DefaultEndpoint] = &Entry{Alias: DefaultAlias}
		changed = true
	}

	if _, ok := c.Endpoints[c.Current]; !ok {
		warn("current CKAN %q not found in config, resetting", c.Current)
		c.Current = firstEndpoint(c.Endpoints)
		changed = true
	}

	if c.DCache.Method == "" {
		c.DCache = DCacheAuth{Method: "netrc", File: "~/.netrc"}
		changed = true
	}

	return changed
}

// firstEndpoint prefers the default endpoint, then the lexicographically
// first one, so healing is deterministic.
func firstEndpoint(endpoints map[string]*Entry) string {
	if _, ok := endpoints[DefaultEndpoint]; ok {
		return DefaultEndpoint
	}
	keys := sortedKeys(endpoints)
	if len(keys) == 0 {
		return DefaultEndpoint
	}
	return keys[0]
}

func sortedKeys(m map[string]*Entry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// GetEntry resolves urlOrAlias against endpoint URLs first, then aliases.
// The empty string resolves to the current endpoint.
func (c *Config) GetEntry(urlOrAlias string) (string, *Entry, error) {
	if urlOrAlias == "" {
		urlOrAlias = c.Current
	}
	if e, ok := c.Endpoints[urlOrAlias]; ok {
		return urlOrAlias, e, nil
	}
	for _, u := range sortedKeys(c.Endpoints) {
		if c.Endpoints[u].Alias == urlOrAlias {
			return u, c.Endpoints[u], nil
		}
	}
	return "", nil, fmt.Errorf("%w for %q", ErrNoSuchEndpoint, urlOrAlias)
}

// Use makes urlOrAlias the current endpoint, registering it first when it is
// a URL not yet known. Unknown non-URL input is an error.
func (c *Config) Use(urlOrAlias string) error {
	if urlOrAlias == "" {
		urlOrAlias = DefaultEndpoint
	}
	u, _, err := c.GetEntry(urlOrAlias)
	if err != nil {
		if !IsValidURL(urlOrAlias) {
			return fmt.Errorf("%w: %q is neither a known alias nor a URL", ErrConfigInvalid, urlOrAlias)
		}
		u = urlOrAlias
		c.Endpoints[u] = &Entry{}
	}
	if c.Current == u {
		return nil
	}
	c.Current = u
	return c.Save()
}

// SetAlias assigns alias to the endpoint at url, registering the endpoint
// when it is new.
func (c *Config) SetAlias(alias string, url string) error {
	if _, _, err := c.GetEntry(alias); err == nil {
		return fmt.Errorf("%w: %q", ErrAliasTaken, alias)
	}

	if _, e, err := c.GetEntry(url); err == nil {
		e.Alias = alias
	} else {
		if !IsValidURL(url) {
			return fmt.Errorf("%w: invalid CKAN URL %q", ErrConfigInvalid, url)
		}
		c.Endpoints[url] = &Entry{Alias: alias}
	}
	return c.Save()
}

// Remove drops the endpoint known as urlOrAlias. The default endpoint is
// never removed; only its alias is cleared.
func (c *Config) Remove(urlOrAlias string) error {
	u, e, err := c.GetEntry(urlOrAlias)
	if err != nil {
		return err
	}
	if u == DefaultEndpoint {
		e.Alias = ""
	} else {
		delete(c.Endpoints, u)
	}
	if c.Current == u {
		c.Current = firstEndpoint(c.Endpoints)
	}
	return c.Save()
}

// SetToken stores an API token for the endpoint at url.
func (c *Config) SetToken(url string, token string) error {
	_, e, err := c.GetEntry(url)
	if err != nil {
		return err
	}
	e.Token = token
	return c.Save()
}

// CurrentEndpoint returns the current URL and its token.
//
// ErrNoToken is returned when no token is stored for it yet.
func (c *Config) CurrentEndpoint() (string, string, error) {
	u, e, err := c.GetEntry("")
	if err != nil {
		return "", "", err
	}
	if e.Token == "" {
		return "", "", fmt.Errorf("%w for %s", ErrNoToken, u)
	}
	return u, e.Token, nil
}

// SetDCacheAuth validates and stores the ada authentication method.
func (c *Config) SetDCacheAuth(method string, file string) error {
	if method != "macaroon" && method != "netrc" {
		return fmt.Errorf("%w: auth method must be macaroon or netrc, got %q", ErrConfigInvalid, method)
	}
	c.DCache = DCacheAuth{Method: method, File: file}
	return c.Save()
}

// Save writes the whole config back to its file.
//
// An existing file is backed up next to it for the duration of the write,
// and its permission is forced to 0600.
func (c *Config) Save() error {
	saving := false

	if err := os.MkdirAll(filepath.Dir(c.path), os.FileMode(0700)); err != nil {
		return err
	}

	bkpath := c.path + ".backup"
	bk, err := open.NewSafeFile(bkpath)
	if err != nil {
		return err
	}
	defer func() {
		if !saving {
			os.Remove(bkpath)
		}
	}()
	defer bk.Close()

	f, err := os.OpenFile(c.path, os.O_RDWR, os.FileMode(0600))
	if err == nil {
		// In case of the existing file with loose permissions,
		// enforce permission to 0600.
		if err := acl.Chmod(c.path, os.FileMode(0600)); err != nil {
			return err
		}
	} else {
		if os.IsPermission(err) {
			return fmt.Errorf(
				"%w, because no permission to write file at %s",
				ErrCannotUpdateConfig, c.path,
			)
		} else if os.IsNotExist(err) {
			f_, err_ := open.NewSafeFile(c.path)
			if err_ != nil {
				return fmt.Errorf("%w: cannot create a file at %s", ErrCannotCreateConfig, c.path)
			}
			f = f_
		} else {
			return err
		}
	}
	defer f.Close()

	if _, err := io.Copy(bk, f); err != nil {
		return err
	}

	saving = true
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	if err := f.Truncate(0); err != nil {
		return err
	}

	buf, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return err
	}
	_, err = f.Write(buf)

	if err == nil {
		saving = false
	}
	return err
}
