package main

import (
	"github.com/reusee/bgpipe/chainconfigs"
	"github.com/reusee/bgpipe/chains"
	"github.com/reusee/bgpipe/debugs"
	"github.com/reusee/dscope"
)

type Module struct {
	dscope.Module
	Chains  chains.Module
	Debugs  debugs.Module
	Configs chainconfigs.Module
}
