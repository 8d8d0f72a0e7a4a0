package logs

import (
	"github.com/reusee/dscope"
)

// Module provides Logger, NewSpan and Writer. It expects *testing.T from a modes module.
type Module struct {
	dscope.Module
}
