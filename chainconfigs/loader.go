package chainconfigs

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/reusee/bgpipe/configs"
	"github.com/reusee/bgpipe/logs"
)

//go:embed schema.cue
var schema string

var filenames = []string{
	"bgpipe.cue",
	".bgpipe.cue",
}

// ConfigsLoader loads config files from the working directory, the user config dir and /etc, in that precedence.
func (Module) ConfigsLoader(
	logger logs.Logger,
) configs.Loader {
	paths := searchPaths()
	if len(paths) > 0 {
		logger.Info("config file",
			"paths", paths,
		)
	}
	return configs.NewLoader(paths, schema)
}

func searchPaths() (paths []string) {
	var dirs []string

	// working directory
	if workingDir, err := os.Getwd(); err == nil {
		dirs = append(dirs, workingDir)
	}

	// user config dir
	if configDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, configDir)
	}

	// system wide dir
	dirs = append(dirs, "/etc")

	for _, dir := range dirs {
		for _, filename := range filenames {
			path := filepath.Join(dir, filename)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}
	return
}
