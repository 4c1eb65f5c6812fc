// Package daemon coordinates the background pipeline services and enforces
// single-instance execution through a file lock.
package daemon
