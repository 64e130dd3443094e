// Package state holds the persisted selection state and the command protocol
// that mutates it.
//
// The document has two namespaces: select maps a conditional partial key to the
// chosen value and feeds the selection engine; set holds free-form key/value
// pairs for callers. Every successful command is followed by an atomic rewrite
// of the whole document; a failed command leaves the persisted document as is.
package state
