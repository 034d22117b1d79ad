package ckan

import (
	"encoding/json"
	"fmt"
)

// Well-known extras keys written by surfmeta itself.
const (
	KeyUUID       string = "uuid"
	KeySystemName string = "system_name"
	KeyServer     string = "server"
	KeyProtocols  string = "protocols"
	KeyChecksum   string = "checksum"
	KeyLocation   string = "location"
)

// Extra is one entry of CKAN's flat key/value metadata list.
//
// Values are always strings on the wire. Lists are stored as their JSON
// encoding and parsed back best-effort on read.
type Extra struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (e Extra) String() string {
	return e.Key + "=" + e.Value
}

func (a Extra) Equal(b Extra) bool {
	return a.Key == b.Key && a.Value == b.Value
}

type Organization struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
}

type Group struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
}

type Resource struct {
	Id   string `json:"id,omitempty"`
	Name string `json:"name"`
	Hash string `json:"hash,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Dataset is a CKAN package record.
//
// Name is globally unique on a CKAN instance; surfmeta assigns a fresh UUID
// as Name on create. Extras are treated as a logical mapping with
// last-write-wins semantics even though CKAN itself does not require keys
// to be unique.
type Dataset struct {
	Id           string        `json:"id,omitempty"`
	Name         string        `json:"name"`
	Title        string        `json:"title,omitempty"`
	Author       string        `json:"author,omitempty"`
	OwnerOrg     string        `json:"owner_org,omitempty"`
	Organization *Organization `json:"organization,omitempty"`
	Groups       []Group       `json:"groups,omitempty"`
	Extras       []Extra       `json:"extras,omitempty"`
	Resources    []Resource    `json:"resources,omitempty"`
	Private      bool          `json:"private,omitempty"`
}

// ExtraValue returns the value of the first extras entry with the given key.
func (d Dataset) ExtraValue(key string) (string, bool) {
	for _, e := range d.Extras {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// ExtrasAsMap flattens the extras list into a map, last entry winning on
// duplicated keys.
func (d Dataset) ExtrasAsMap() map[string]string {
	m := map[string]string{}
	for _, e := range d.Extras {
		m[e.Key] = e.Value
	}
	return m
}

func (d Dataset) GroupNames() []string {
	names := make([]string, len(d.Groups))
	for nth, g := range d.Groups {
		names[nth] = g.Name
	}
	return names
}

// User is the CKAN account a token belongs to.
type User struct {
	Id          string `json:"id,omitempty"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
}

// Envelope is the response wrapper of CKAN action API calls.
//
// On success, Result holds the action result. On failure, Error describes
// what went wrong, typed by its "__type" discriminator.
type Envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   *ErrorDetail    `json:"error,omitempty"`
}

// ErrorDetail is CKAN's error body.
//
// Type values observed in the wild include "Not Found Error",
// "Authorization Error" and "Validation Error".
type ErrorDetail struct {
	Type    string `json:"__type"`
	Message string `json:"message,omitempty"`
}

func (e ErrorDetail) String() string {
	if e.Message == "" {
		return e.Type
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}
