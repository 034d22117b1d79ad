package resource

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/env"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/rest"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/common"
	"github.com/youta-t/flarc"
)

const (
	ARG_UUID = "UUID"
	ARG_FILE = "FILE"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Upload a file as a dataset resource.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_UUID, Required: true,
				Help: "dataset to attach the file to.",
			},
			{
				Name: ARG_FILE, Required: true,
				Help: "file to upload.",
			},
		},
		common.NewTask(Task),
	)
}

func Task(
	ctx context.Context,
	logger *log.Logger,
	_ env.Env,
	client rest.Client,
	cl flarc.Commandline[struct{}],
	_ []any,
) error {
	args := cl.Args()
	id := args[ARG_UUID][0]
	file := args[ARG_FILE][0]

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	s, err := f.Stat()
	if err != nil {
		return err
	}
	if !s.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", flarc.ErrUsage, file)
	}

	bar := pb.New64(s.Size())
	bar.Set(pb.Bytes, true)
	bar.SetWriter(cl.Stderr())
	if err := bar.Err(); err != nil {
		return err
	}

	bar.Start()
	res, err := client.AddResource(ctx, id, filepath.Base(file), bar.NewProxyReader(f))
	bar.Finish()
	if err != nil {
		return err
	}

	logger.Printf("uploaded %s as resource %s of dataset %s", file, res.Id, id)
	return nil
}
