package metadata

import (
	"strconv"
	"strings"

	"github.com/surf-rdm/surfmeta/pkg/api/types/ckan"
)

// Query is a set of search criteria for datasets. All supplied criteria
// must hold (AND); empty criteria hold trivially.
//
// Callers should reject an all-empty Query before searching; Search itself
// returns its input unfiltered in that case.
type Query struct {
	// Keywords match case-insensitively as substrings of the dataset's
	// token bag (title, name, extras keys and flattened extras values).
	// Any one matching keyword is enough.
	Keywords []string

	// Organization name, matched exactly, case-insensitive.
	Org string

	// Group name the dataset must be a member of, case-insensitive.
	Group string

	// System name recorded in the system_name extra, matched exactly,
	// case-insensitive. Datasets without any system_name extra match the
	// filters "local" and "localhost" only.
	System string
}

func (q Query) IsZero() bool {
	return len(q.Keywords) == 0 && q.Org == "" && q.Group == "" && q.System == ""
}

// Search filters datasets by q, preserving their order.
func Search(datasets []ckan.Dataset, q Query) []ckan.Dataset {
	found := []ckan.Dataset{}
	for _, ds := range datasets {
		if matches(ds, q) {
			found = append(found, ds)
		}
	}
	return found
}

func matches(ds ckan.Dataset, q Query) bool {
	if len(q.Keywords) != 0 {
		bag := strings.Join(TokenBag(ds), " ")
		hit := false
		for _, kw := range q.Keywords {
			if strings.Contains(bag, strings.ToLower(kw)) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}

	if q.Org != "" {
		org := ""
		if ds.Organization != nil {
			org = ds.Organization.Name
		}
		if !strings.EqualFold(q.Org, org) {
			return false
		}
	}

	if q.Group != "" {
		member := false
		for _, g := range ds.Groups {
			if strings.EqualFold(q.Group, g.Name) {
				member = true
				break
			}
		}
		if !member {
			return false
		}
	}

	if q.System != "" {
		system, ok := ds.ExtraValue(ckan.KeySystemName)
		if !ok {
			// local data carries no system_name extra
			want := strings.ToLower(q.System)
			return want == "local" || want == "localhost"
		}
		if !strings.EqualFold(q.System, system) {
			return false
		}
	}

	return true
}

// TokenBag flattens a dataset into lowercase tokens for keyword search:
// its title, name, every extras key, and every extras value with JSON
// values (lists, objects) recursively expanded into their leaves.
func TokenBag(ds ckan.Dataset) []string {
	bag := []string{strings.ToLower(ds.Title), strings.ToLower(ds.Name)}
	for _, e := range ds.Extras {
		if e.Key != "" {
			bag = append(bag, strings.ToLower(e.Key))
		}
		bag = append(bag, flattenValue(DecodeExtraValue(e.Value))...)
	}
	return bag
}

func flattenValue(v any) []string {
	switch value := v.(type) {
	case string:
		return []string{strings.ToLower(value)}
	case []any:
		tokens := []string{}
		for _, item := range value {
			tokens = append(tokens, flattenValue(item)...)
		}
		return tokens
	case map[string]any:
		tokens := []string{}
		for k, item := range value {
			tokens = append(tokens, strings.ToLower(k))
			tokens = append(tokens, flattenValue(item)...)
		}
		return tokens
	case bool:
		return []string{strconv.FormatBool(value)}
	case float64:
		return []string{strconv.FormatFloat(value, 'g', -1, 64)}
	default:
		// null and anything exotic
		return []string{""}
	}
}
