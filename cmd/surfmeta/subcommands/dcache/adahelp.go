package dcache

import (
	"context"
	"fmt"
	"log"

	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/common"
	"github.com/surf-rdm/surfmeta/pkg/dcache"
	"github.com/youta-t/flarc"
)

func AdaHelp() (flarc.Command, error) {
	return flarc.NewCommand(
		"Show ada invocations useful alongside surfmeta.",
		struct{}{},
		flarc.Args{},
		common.NewTaskWithCommonFlag(AdaHelpTask),
	)
}

func AdaHelpTask(
	_ context.Context,
	_ *log.Logger,
	_ common.CommonFlags,
	cl flarc.Commandline[struct{}],
	_ []any,
) error {
	fmt.Fprint(cl.Stdout(), `ada cheat sheet (replace --tokenfile with --netrc as configured):

  # list a directory
  ada --tokenfile macaroon.conf --list /project/mydata

  # show labels and checksums of a file
  ada --tokenfile macaroon.conf --stat /project/mydata/file.dat

  # list active event channels
  ada --tokenfile macaroon.conf --list-channels

  # free a stuck event channel (e.g. after a crashed listener)
  ada --tokenfile macaroon.conf --delete-channel `+dcache.DefaultChannel+`

  # mint a macaroon token
  get-macaroon --url https://dcache.example.org:2880/ --duration P7D --chroot --output rclone dcache

See https://github.com/sara-nl/SpiderScripts for the full ada documentation.
`)
	return nil
}
