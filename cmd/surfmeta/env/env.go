package env

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Env holds project-level defaults read from a surfmeta.yaml file.
//
// All fields are optional; a missing file yields the zero value.
type Env struct {
	// Default author name offered when creating datasets.
	Author string `yaml:"author"`

	// Default organization name offered when creating datasets.
	Organization string `yaml:"organization"`

	// Tracking label expected on dCache files followed by `dcache listen`.
	Label string `yaml:"label"`

	// Event channel name used by `dcache listen`.
	Channel string `yaml:"channel"`

	// Extras added to every dataset created from this project.
	Extras map[string]string `yaml:"extras"`
}

func New() *Env {
	return new(Env)
}

// Load reads an Env from filepath.
//
// A missing file is not an error; it yields empty defaults.
func Load(filepath string) (*Env, error) {
	e := Env{}

	content, err := os.ReadFile(filepath)
	if err != nil {
		return &e, nil
	}

	if err := yaml.Unmarshal(content, &e); err != nil {
		return nil, err
	}

	return &e, nil
}
