package common

import (
	"os"
	"path"
	"path/filepath"

	"github.com/surf-rdm/surfmeta/cmd/surfmeta/config/conf"
)

// EnvFileName is the project defaults file, searched from the working
// directory upward.
const EnvFileName = "surfmeta.yaml"

type CommonFlags struct {
	Config string `flag:"config" help:"path to surfmeta config file"`
	Env    string `flag:"env" help:"path to surfmeta.yaml defaults file"`
}

type commonFlagDetection struct {
	home string
}

type CommonFlagDetectionOption func(*commonFlagDetection) *commonFlagDetection

func WithHome(home string) CommonFlagDetectionOption {
	return func(opt *commonFlagDetection) *commonFlagDetection {
		opt.home = home
		return opt
	}
}

// Flags detects default values for the common flags: the config file under
// the user's home directory and the nearest surfmeta.yaml at or above from.
func Flags(from string, opt ...CommonFlagDetectionOption) (CommonFlags, error) {
	detparam := commonFlagDetection{
		home: "",
	}
	for _, o := range opt {
		detparam = *o(&detparam)
	}

	config := conf.DefaultPath()
	if detparam.home != "" {
		config = filepath.Join(detparam.home, ".ckan", "ckan.json")
	}

	if _from, err := filepath.Abs(from); err == nil {
		from = _from
	}

	env := path.Join(from, EnvFileName)
	for searchpath := from; ; {
		candidate := path.Join(searchpath, EnvFileName)
		if s, err := os.Stat(candidate); err == nil && s.Mode().IsRegular() {
			env = candidate
			break
		}

		next := path.Dir(searchpath)
		if next == searchpath {
			break
		}
		searchpath = next
	}

	return CommonFlags{
		Config: config,
		Env:    env,
	}, nil
}

type CommonFlagOption func(*CommonFlags) *CommonFlags

func WithConfig(config string) CommonFlagOption {
	return func(opt *CommonFlags) *CommonFlags {
		opt.Config = config
		return opt
	}
}

func WithEnv(env string) CommonFlagOption {
	return func(opt *CommonFlags) *CommonFlags {
		opt.Env = env
		return opt
	}
}
