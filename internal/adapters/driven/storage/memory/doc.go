// Package memory provides in-memory implementations of driven ports for
// tests and single-shot runs that do not need history.
package memory
