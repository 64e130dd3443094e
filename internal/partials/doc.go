// Package partials parses configuration fragments and selects which of them make up a build.
//
// A partial is a single file whose stem encodes how it is selected:
//
//	base.conf          unconditional, always part of a build
//	scheme.dark.conf   conditional, key "scheme" and value "dark"
//
// Only the first two dot-separated segments of the stem are meaningful; further
// segments are kept in Selectors but never interpreted.
//
// Content views (Raw, Filtered, Payload, Display) are read from disk on every call.
// Partials are short lived: a build scans its directories afresh each time.
package partials
