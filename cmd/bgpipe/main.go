package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/reusee/bgpipe/chainconfigs"
	"github.com/reusee/bgpipe/chains"
	"github.com/reusee/bgpipe/cmds"
	"github.com/reusee/bgpipe/debugs"
	"github.com/reusee/bgpipe/logs"
	"github.com/reusee/bgpipe/modes"
	"github.com/reusee/bgpipe/stepfiles"
	"github.com/reusee/bgpipe/workers"
	"github.com/reusee/dscope"
	"golang.org/x/term"
)

var (
	runFlag         = cmds.Var[string]("run")
	inputFlag       = cmds.Var[string]("input")
	replFlag        = cmds.Switch("repl")
	demoFlag        = cmds.Switch("demo")
	metricsAddrFlag = cmds.Var[string]("-metrics-addr")
)

func init() {
	cmds.Define("help", cmds.Func(func() {
		cmds.GlobalExecutor.PrintUsage()
		os.Exit(0)
	}).Desc("print usage"))
}

func main() {
	cmds.Execute(os.Args[1:])

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	scope := chainconfigs.Fork(dscope.New(
		new(Module),
		modes.ForProduction(),
	))

	scope.Call(func(
		logger logs.Logger,
		reg *prometheus.Registry,
	) {
		if *metricsAddrFlag == "" {
			return
		}
		server := &http.Server{
			Addr:              *metricsAddrFlag,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: time.Second * 10,
		}
		go func() {
			logger.InfoContext(ctx, "serve metrics", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.ErrorContext(ctx, "serve metrics", "error", err)
			}
		}()
		context.AfterFunc(ctx, func() {
			_ = server.Close()
		})
	})

	switch {

	case *runFlag != "":
		scope.Call(func(
			newChain chains.NewChain,
			logger logs.Logger,
		) {
			ce(runFile(ctx, newChain, logger, *runFlag, os.Stdout))
		})

	case *replFlag:
		scope.Call(func(
			repl debugs.REPL,
		) {
			var globals map[string]any
			if input, ok, err := readInput(); err != nil {
				ce(err)
			} else if ok {
				globals = map[string]any{
					"input": input,
				}
			}
			ce(repl(ctx, "bgpipe", globals))
		})

	case *demoFlag:
		scope.Call(func(
			newChain chains.NewChain,
			logger logs.Logger,
		) {
			ce(demo(ctx, newChain, logger, os.Stdout))
		})

	default:
		cmds.GlobalExecutor.PrintUsage()
		os.Exit(2)

	}
}

func runFile(ctx context.Context, newChain chains.NewChain, logger logs.Logger, path string, w io.Writer) error {
	file, err := stepfiles.Load(path)
	if err != nil {
		return err
	}
	funcs, err := file.Funcs()
	if err != nil {
		return err
	}

	input := file.Input
	if v, ok, err := readInput(); err != nil {
		return err
	} else if ok {
		input = v
	}

	chain := newChain(funcs...)
	pending := chain.Call(ctx, input)
	logger.InfoContext(ctx, "chain started",
		"file", path,
		"steps", len(funcs),
		"invocation", pending.ID(),
	)

	result, err := pending.Wait()
	if err != nil {
		var e *workers.Error
		if errors.As(err, &e) && e.Backtrace != "" {
			logger.ErrorContext(ctx, "chain failed",
				"phase", e.Phase,
				"backtrace", e.Backtrace,
			)
		}
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", result)
	return err
}

// readInput takes the input flag, or stdin when it is not a terminal.
func readInput() (any, bool, error) {
	var content []byte
	if *inputFlag != "" {
		content = []byte(*inputFlag)
	} else if stdin := getStdinContent(); len(stdin) > 0 {
		content = stdin
	}
	if len(content) == 0 {
		return nil, false, nil
	}
	var input any
	if err := json.Unmarshal(content, &input); err != nil {
		return nil, false, fmt.Errorf("decode input: %w", err)
	}
	return input, true, nil
}

func getStdinContent() (ret []byte) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	ret, err := io.ReadAll(os.Stdin)
	ce(err)
	return
}

func ce(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
