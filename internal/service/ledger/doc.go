// Package ledger implements the Change Ledger & Atomic Pipeline: the
// single choke point every graph write passes through. It validates the
// operator's rationale, enforces the strict-diff "no-change save" rule,
// persists the entity via the graph engine, writes an immutable ledger row,
// and renders+sends a best-effort notification, rate-limited per network.
//
// The entity write and the ledger write are a logical unit: if the ledger
// write fails after the entity write succeeds, the service returns an error
// that surfaces the inconsistency rather than silently swallowing it. The
// notification step never rolls back the entity write.
package ledger
