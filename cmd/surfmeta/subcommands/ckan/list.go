package ckan

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/surf-rdm/surfmeta/cmd/surfmeta/config/conf"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/env"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/common"
	"github.com/youta-t/flarc"
)

func List() (flarc.Command, error) {
	return flarc.NewCommand(
		"List registered CKAN endpoints.",
		struct{}{},
		flarc.Args{},
		common.NewConfigTask(ListTask),
		flarc.WithDescription(`
List registered CKAN endpoints. The current one is marked with "*".
`),
	)
}

func ListTask(
	_ context.Context,
	_ *log.Logger,
	cfg *conf.Config,
	_ env.Env,
	cl flarc.Commandline[struct{}],
	_ []any,
) error {
	urls := make([]string, 0, len(cfg.Endpoints))
	for u := range cfg.Endpoints {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	out := cl.Stdout()
	for _, u := range urls {
		marker := " "
		if u == cfg.Current {
			marker = "*"
		}
		alias := cfg.Endpoints[u].Alias
		if alias == "" {
			alias = "-"
		}
		fmt.Fprintf(out, "%s %s\t%s\n", marker, alias, u)
	}
	return nil
}
