// Package linker implements the Conflict ↔ Optimization Linker:
// fingerprint-based recurrence detection, auto-created remediation
// optimizations, two-way status cross-sync, and conflict metrics
// aggregation.
package linker
