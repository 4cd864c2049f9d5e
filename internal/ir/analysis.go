package ir

import "gpir/internal/pass"

// Dominance returns fn's dominator-tree analysis, computed on first use and
// cached on fn's own PassManager until invalidated.
func Dominance(fn *Function) *DominanceInfo {
	return pass.Result[*Function, *DominanceInfo](fn.PassManager(), dominanceAnalysis{})
}

// UseInfo returns fn's def-use analysis, computed on first use and cached
// on fn's own PassManager until invalidated.
func UseInfo(fn *Function) *DefUseInfo {
	return pass.Result[*Function, *DefUseInfo](fn.PassManager(), defUseAnalysis{})
}
