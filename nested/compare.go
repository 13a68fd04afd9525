package nested

import (
	"math"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Equal reports whether two trees hold the same values. Mapping key order is
// ignored. With decimal >= 0, floating point leaves are compared to within
// 1.5 * 10^-decimal; with decimal < 0 they must match exactly.
func Equal(a, b Node, decimal int) bool {
	return cmp.Equal(ToValue(a), ToValue(b), compareOptions(decimal)...)
}

// Diff returns a human-readable report of the differences between a and b,
// or "" when Equal would return true.
func Diff(a, b Node, decimal int) string {
	return cmp.Diff(ToValue(a), ToValue(b), compareOptions(decimal)...)
}

func compareOptions(decimal int) []cmp.Option {
	if decimal < 0 {
		return nil
	}
	margin := 1.5 * math.Pow10(-decimal)
	return []cmp.Option{cmpopts.EquateApprox(0, margin), cmpopts.EquateNaNs()}
}

// Dump renders a tree for diagnostics.
func Dump(n Node) string {
	return dumper.Sdump(ToValue(n))
}
