// Package graph implements the SEO Graph Engine: the node model,
// tier computation via reverse-BFS from main nodes, the structural
// invariants enforced on every write, the ten structural conflict detectors,
// and the structure-snapshot formatter used by rendered notifications.
//
// This package contains pure graph logic plus the persistence calls needed
// to enforce invariants atomically with a write. It does not write change-
// ledger rows, render templates, or send notifications — those are the
// ledger package's job, which calls into this package to perform the
// actual entity mutation under invariant enforcement.
package graph
