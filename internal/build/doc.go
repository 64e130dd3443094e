// Package build assembles one target file per build definition.
//
// A Definition re-scans its source directories on every build, so the output
// always reflects the fragments currently on disk. It also carries the debounce
// state (last build time and triggering file) the daemon consults for every
// change event.
package build
