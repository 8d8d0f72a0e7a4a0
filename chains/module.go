package chains

import (
	"github.com/reusee/bgpipe/workers"
	"github.com/reusee/dscope"
)

type Module struct {
	dscope.Module
	Workers workers.Module
}

type NewChain func(steps ...any) Chain

func (Module) NewChain(
	executor *workers.Executor,
) NewChain {
	return func(steps ...any) Chain {
		return Compose(executor, steps...)
	}
}
