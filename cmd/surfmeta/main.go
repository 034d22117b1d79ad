package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"

	subckan "github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/ckan"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/common"
	subcreate "github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/create"
	subcreatemd "github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/createmd"
	subdcache "github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/dcache"
	subdelete "github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/delete"
	subget "github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/get"
	sublist "github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/list"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/logger"
	subresource "github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/resource"
	subsearch "github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/search"
	subupdate "github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/update"
	"github.com/surf-rdm/surfmeta/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func main() {
	name := path.Base(os.Args[0])
	logger := logger.Default()
	logger.SetPrefix(fmt.Sprintf("[%s] ", name))

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill,
	)
	defer cancel()

	cf := try.To(common.Flags(".")).OrFatal(logger)
	ckan := try.To(subckan.New()).OrFatal(logger)
	create := try.To(subcreate.New()).OrFatal(logger)
	createmd := try.To(subcreatemd.New()).OrFatal(logger)
	list := try.To(sublist.New()).OrFatal(logger)
	search := try.To(subsearch.New()).OrFatal(logger)
	update := try.To(subupdate.New()).OrFatal(logger)
	del := try.To(subdelete.New()).OrFatal(logger)
	get := try.To(subget.New()).OrFatal(logger)
	resource := try.To(subresource.New()).OrFatal(logger)
	dcache := try.To(subdcache.New()).OrFatal(logger)

	surfmeta := try.To(
		flarc.NewCommandGroup(
			"Manage dataset metadata in CKAN from SURF storage and compute.",
			cf,
			flarc.WithSubcommand("ckan", ckan),
			flarc.WithSubcommand("create", create),
			flarc.WithSubcommand("create-md", createmd),
			flarc.WithSubcommand("list", list),
			flarc.WithSubcommand("search", search),
			flarc.WithSubcommand("update", update),
			flarc.WithSubcommand("delete", del),
			flarc.WithSubcommand("get", get),
			flarc.WithSubcommand("resource", resource),
			flarc.WithSubcommand("dcache", dcache),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, surfmeta, flarc.WithHelp(true)))
}
