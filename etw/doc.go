// Package etw provides high-performance access to Windows Event Tracing (ETW).
//
// It builds a Trace, attaches Providers, and dispatches decoded events to
// callbacks in real time, without requiring CGO. Schema lookups are cached
// per event shape, predicates filter both at the native level (event ids)
// and in-process (property values), and every host syscall is confined
// behind the HostRuntime seam so the rest of the package is testable on any
// platform.
//
// Basic usage:
//
//	host := etw.NewWindowsHost()
//	trace := etw.UserTrace("MyTrace", host)
//
//	provider := etw.NewProvider(providerGUID).
//		OnEvent(func(r *etw.TypedRecord) {
//			// handle r
//		})
//	trace.AddProvider(provider)
//
//	go trace.Stop() // from another goroutine, when done
//	if err := trace.Start(); err != nil {
//		log.Fatal(err)
//	}
package etw
