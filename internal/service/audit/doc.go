// Package audit implements the audit log: an append-only record of
// every privileged action (template change, template reset, permission
// violation, settings change, notification failure, SEO change event),
// queryable by event type, actor, resource, severity, and success, with
// pagination, plus a stats-over-N-days rollup.
package audit
