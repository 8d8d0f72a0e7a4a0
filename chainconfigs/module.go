package chainconfigs

import (
	"github.com/reusee/bgpipe/logs"
	"github.com/reusee/dscope"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}
