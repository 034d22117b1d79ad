package dcache

import (
	"github.com/youta-t/flarc"
)

// New builds the `surfmeta dcache` command group: authentication for the
// external ada tool, labelling and checksumming stored files, and the
// event-listening loop keeping CKAN in sync with the storage.
func New() (flarc.Command, error) {
	auth, err := Auth()
	if err != nil {
		return nil, err
	}
	addlabel, err := AddLabel()
	if err != nil {
		return nil, err
	}
	checksum, err := Checksum()
	if err != nil {
		return nil, err
	}
	listen, err := Listen()
	if err != nil {
		return nil, err
	}
	adaHelp, err := AdaHelp()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Work with data on dCache storage.",
		struct{}{},
		flarc.WithSubcommand("auth", auth),
		flarc.WithSubcommand("addlabel", addlabel),
		flarc.WithSubcommand("checksum", checksum),
		flarc.WithSubcommand("listen", listen),
		flarc.WithSubcommand("ada-help", adaHelp),
	)
}
