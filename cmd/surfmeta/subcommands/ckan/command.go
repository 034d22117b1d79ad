package ckan

import (
	"github.com/youta-t/flarc"
)

// New builds the `surfmeta ckan` command group: management of known CKAN
// endpoints and the credentials stored for them.
func New() (flarc.Command, error) {
	list, err := List()
	if err != nil {
		return nil, err
	}
	swtch, err := Switch()
	if err != nil {
		return nil, err
	}
	ini, err := Init()
	if err != nil {
		return nil, err
	}
	remove, err := Remove()
	if err != nil {
		return nil, err
	}
	alias, err := Alias()
	if err != nil {
		return nil, err
	}
	orgs, err := Orgs()
	if err != nil {
		return nil, err
	}
	groups, err := Groups()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manage CKAN endpoints and tokens.",
		struct{}{},
		flarc.WithSubcommand("list", list),
		flarc.WithSubcommand("switch", swtch),
		flarc.WithSubcommand("init", ini),
		flarc.WithSubcommand("remove", remove),
		flarc.WithSubcommand("alias", alias),
		flarc.WithSubcommand("orgs", orgs),
		flarc.WithSubcommand("groups", groups),
	)
}
