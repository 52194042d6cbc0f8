//go:build debug

package etw

import "fmt"

// In debug builds, this function will panic if the condition is false.
func assert(condition bool, msg string, args ...any) {
	if !condition {
		panic(fmt.Sprintf(msg, args...))
	}
}

// checkAffinity panics in debug builds if called from a goroutine other than
// the one that first called it, catching a caller violating the schema
// cache's single-goroutine contract (spec.md §4.1) during development.
func checkAffinity(owner *int64) {
	gid := getGoroutineID()
	if *owner == 0 {
		*owner = gid
		return
	}
	assert(*owner == gid, "etw: schema cache accessed from goroutine %d, owned by %d", gid, *owner)
}
