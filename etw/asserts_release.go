//go:build !debug

package etw

// Release builds compile the affinity check away entirely; the schema
// cache's single-goroutine contract is documentation, not a runtime cost.
func assert(condition bool, msg string, args ...any) {}

func checkAffinity(owner *int64) {}
