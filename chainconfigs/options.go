package chainconfigs

import (
	"fmt"
	"time"

	"github.com/reusee/bgpipe/cmds"
	"github.com/reusee/bgpipe/configs"
	"github.com/reusee/bgpipe/vars"
	"github.com/reusee/bgpipe/workers"
	"github.com/reusee/dscope"
)

var (
	// pointers, so that an explicit 0 restores "unbounded" over config files
	maxContextsFlag = cmds.Var[*int]("-max-contexts")
	timeoutFlag     = cmds.Var[*time.Duration]("-timeout")
	maxStepsFlag    = cmds.Var[*int]("-max-steps")
	strictFlag      = cmds.Switch("-strict")
	noSourceFlag    = cmds.Switch("-no-source")
)

// Options resolves executor options: flags, then config files, then defaults.
func Options(loader configs.Loader) workers.Options {
	options := workers.DefaultOptions()

	if n := vars.FirstNonZero(
		*maxContextsFlag,
		setting[int](loader, "max_contexts"),
	); n != nil {
		options.MaxContexts = *n
	}

	var configTimeout *time.Duration
	if str := configs.First[string](loader, "timeout"); str != "" {
		d, err := time.ParseDuration(str)
		if err != nil {
			panic(fmt.Errorf("config timeout: %w", err))
		}
		configTimeout = &d
	}
	if d := vars.FirstNonZero(*timeoutFlag, configTimeout); d != nil {
		options.Timeout = *d
	}

	if n := vars.FirstNonZero(
		*maxStepsFlag,
		setting[int](loader, "max_steps"),
	); n != nil {
		options.MaxSteps = uint64(max(0, *n))
	}

	// any config file may turn strict mode on or source off
	options.Strict = *strictFlag
	for strict := range configs.All[bool](loader, "strict") {
		options.Strict = options.Strict || strict
	}
	for allow := range configs.All[bool](loader, "allow_source") {
		options.AllowSource = options.AllowSource && allow
	}
	if *noSourceFlag {
		options.AllowSource = false
	}

	return options
}

// Fork overrides the default executor options with configured ones.
func Fork(scope dscope.Scope) dscope.Scope {
	return scope.Fork(
		func(loader configs.Loader) workers.Options {
			return Options(loader)
		},
	)
}

// setting reads a config value, nil when absent. Zero is the default of every numeric option, so it reads as absent.
func setting[T comparable](loader configs.Loader, path string) *T {
	value := configs.First[T](loader, path)
	var zero T
	if value == zero {
		return nil
	}
	return &value
}
