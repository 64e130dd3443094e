// Package errors provides the classified error primitives used across i3configger.
//
// Every failure the tool can surface falls into one of a few categories:
//   - CategoryConfig: malformed or missing configuration, fatal at startup
//   - CategoryMessage: a state command with unknown name or wrong arity
//   - CategorySelection: a selector without matching partial, a theme without content
//   - CategoryBuild / CategoryFileSystem: assembling or writing a target failed
//   - CategoryDaemon: the watch loop gave up
//
// Example usage:
//
//	err := errors.SelectionError("no candidate for selection").
//		WithContext("key", key).
//		WithContext("value", value).
//		Build()
package errors
