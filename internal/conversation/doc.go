// Package conversation enforces the legal phase transitions of a live call.
//
// The sales-qualification script is encoded as a constant directed graph so
// the set of legal flows is auditable and the machine can never enter an
// undefined state. One machine instance serves one live call and is driven by
// a single goroutine; it is never persisted.
package conversation
