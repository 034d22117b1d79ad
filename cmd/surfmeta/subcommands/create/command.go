package create

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/env"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/rest"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/common"
	apickan "github.com/surf-rdm/surfmeta/pkg/api/types/ckan"
	"github.com/surf-rdm/surfmeta/pkg/metadata"
	"github.com/surf-rdm/surfmeta/pkg/utils/slices"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Metafile string `flag:"metafile" alias:"m" metavar:"FILE" help:"flat JSON file with extra metadata"`
	Remote   string `flag:"remote" metavar:"SYSTEM" help:"record this system name instead of detecting the executing host"`
	Checksum string `flag:"checksum" metavar:"ALGORITHM" help:"checksum algorithm when PATH is a file"`
}

const ARG_PATH = "PATH"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Register a new dataset for a file or directory.",
		Flag{
			Checksum: "md5",
		},
		flarc.Args{
			{
				Name: ARG_PATH, Required: true,
				Help: "file or directory the dataset describes.",
			},
		},
		common.NewTask(Task),
		flarc.WithDescription(`
Register a new dataset in the current CKAN.

Title, author, organization and groups are prompted on stdin; defaults for
author and organization come from surfmeta.yaml. The executing host is
matched against the known systems (snellius, spider, research cloud) to
record where the data lives, and a checksum is computed when PATH is a
regular file.

The dataset is named by a fresh UUID, also recorded as the "uuid" extra.
`),
	)
}

func Task(
	ctx context.Context,
	logger *log.Logger,
	e env.Env,
	client rest.Client,
	cl flarc.Commandline[Flag],
	_ []any,
) error {
	flags := cl.Flags()
	target := cl.Args()[ARG_PATH][0]

	sys, err := systemFor(target, flags)
	if err != nil {
		return err
	}

	prompt := common.NewPrompter(cl.Stdin(), cl.Stdout())
	title, err := prompt.AskRequired("title")
	if err != nil {
		return err
	}
	author, err := prompt.Ask("author", e.Author)
	if err != nil {
		return err
	}
	org, err := prompt.Ask("organization", e.Organization)
	if err != nil {
		return err
	}
	if org == "" {
		return fmt.Errorf("%w: an organization is required", flarc.ErrUsage)
	}
	groupAnswer, err := prompt.Ask("groups (comma-separated)", "")
	if err != nil {
		return err
	}

	extras, err := userExtras(e, flags.Metafile)
	if err != nil {
		return err
	}

	id := uuid.NewString()
	ds := apickan.Dataset{
		Name:     id,
		Title:    title,
		Author:   author,
		OwnerOrg: org,
		Groups:   parseGroups(groupAnswer),
		Extras:   []apickan.Extra{{Key: apickan.KeyUUID, Value: id}},
	}

	created, err := client.Create(ctx, metadata.Merge(ds, sys, extras))
	if err != nil {
		return err
	}
	logger.Printf("dataset %s created", created.Name)

	buf, err := json.MarshalIndent(created, "", "    ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cl.Stdout(), string(buf))
	return nil
}

func systemFor(target string, flags Flag) (metadata.SystemMeta, error) {
	sys := metadata.LocalSystem()
	if flags.Remote != "" {
		sys = metadata.SystemMeta{
			SystemName: flags.Remote,
			Server:     flags.Remote,
			Protocols:  []string{"ssh", "rsync"},
		}
	} else if hostname, err := os.Hostname(); err == nil {
		sys = metadata.DetectSystem(hostname)
	}

	if abs, err := filepath.Abs(target); err == nil {
		target = abs
	}

	if s, err := os.Stat(target); err == nil && s.Mode().IsRegular() {
		if err := sys.AttachFile(target, flags.Checksum); err != nil {
			return metadata.SystemMeta{}, err
		}
	} else {
		sys.Location = target
	}
	return sys, nil
}

// userExtras merges surfmeta.yaml extras with the metafile's, metafile
// entries last so they win on collision.
func userExtras(e env.Env, metafile string) ([]apickan.Extra, error) {
	extras := []apickan.Extra{}

	keys := make([]string, 0, len(e.Extras))
	for k := range e.Extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		extras = append(extras, apickan.Extra{Key: k, Value: e.Extras[k]})
	}

	if metafile == "" {
		return extras, nil
	}
	fromFile, err := metadata.LoadFlatJSON(metafile)
	if err != nil {
		return nil, err
	}
	return append(extras, fromFile...), nil
}

func parseGroups(answer string) []apickan.Group {
	if answer == "" {
		return nil
	}
	names := slices.Filter(
		slices.Map(strings.Split(answer, ","), strings.TrimSpace),
		func(name string) bool { return name != "" },
	)
	return slices.Map(names, func(name string) apickan.Group {
		return apickan.Group{Name: name}
	})
}
