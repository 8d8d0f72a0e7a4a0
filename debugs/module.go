package debugs

import (
	"github.com/reusee/bgpipe/workers"
	"github.com/reusee/dscope"
)

type Module struct {
	dscope.Module
	Workers workers.Module
}
