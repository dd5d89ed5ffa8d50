// Package dispatch runs auxiliary commands through a fixed lifecycle: bind
// and parse arguments, validate, resolve the dashboard configuration,
// initialize a handler, run it inside the build directory and write its
// results back into the session.
//
// Every invocation is wrapped by an error-state guard. Without
// CAPTURE_CMAKE_ERROR a failure propagates and leaves the session error
// flag set. With it, the failure is recorded as "-1" in the named variable,
// the flag is restored to its value before the call and the call succeeds.
package dispatch
