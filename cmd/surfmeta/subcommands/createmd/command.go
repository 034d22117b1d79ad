package createmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/common"
	"github.com/surf-rdm/surfmeta/pkg/api/types/ckan"
	"github.com/surf-rdm/surfmeta/pkg/metadata"
	"github.com/youta-t/flarc"
)

const ARG_OUTPUT = "OUTPUT"

// provKeys are the Prov-O provenance fields offered first, in this order.
var provKeys = []string{
	"prov:wasGeneratedBy",
	"prov:wasDerivedFrom",
	"prov:startedAtTime",
	"prov:endedAtTime",
	"prov:actedOnBehalfOf",
	"prov:SoftwareAgent",
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Compose a metadata file interactively.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_OUTPUT, Required: true,
				Help: "path of the flat JSON metafile to write.",
			},
		},
		common.NewTaskWithCommonFlag(Task),
		flarc.WithDescription(`
Compose a metafile for `+"`surfmeta create --metafile`"+` or
`+"`surfmeta update`"+`.

Prov-O provenance fields are offered first; empty answers skip them. After
that, arbitrary key/value pairs can be added until an empty key ends the
session. The result is a flat JSON object.
`),
	)
}

func Task(
	_ context.Context,
	logger *log.Logger,
	_ common.CommonFlags,
	cl flarc.Commandline[struct{}],
	_ []any,
) error {
	output := cl.Args()[ARG_OUTPUT][0]

	prompt := common.NewPrompter(cl.Stdin(), cl.Stdout())
	extras := []ckan.Extra{}

	for _, key := range provKeys {
		value, err := prompt.Ask(key, "")
		if err != nil {
			return err
		}
		if value == "" {
			continue
		}
		extras = append(extras, ckan.Extra{Key: key, Value: value})
	}

	for {
		key, err := prompt.Ask("key (empty to finish)", "")
		if err != nil {
			return err
		}
		if key == "" {
			break
		}
		value, err := prompt.Ask(fmt.Sprintf("value for %q", key), "")
		if err != nil {
			return err
		}
		extras = append(extras, ckan.Extra{Key: key, Value: value})
	}

	buf, err := metadata.EncodeFlatJSON(extras)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, buf, os.FileMode(0644)); err != nil {
		return err
	}

	logger.Printf("wrote %d entries to %s", len(extras), output)
	return nil
}
