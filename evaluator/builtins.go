package evaluator

import (
	"time"

	"github.com/titivuk/golox/object"
)

// newBuiltins returns the native functions every global environment starts
// with. now is the time source behind clock.
func newBuiltins(now func() time.Time) map[string]*object.Builtin {
	return map[string]*object.Builtin{
		"clock": {
			Name:   "clock",
			Params: 0,
			Fn: func(args ...object.Object) object.Object {
				// seconds since the Unix epoch, with sub-second precision
				return &object.Number{Value: float64(now().UnixNano()) / float64(time.Second)}
			},
		},
	}
}
