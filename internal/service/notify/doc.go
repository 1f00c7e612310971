// Package notify implements the external notifier adapters: one adapter
// per channel (chat, email), each a thin transport; the chat and OAuth email
// adapters retry through internal/pkg/httpretry. Service routes each event
// to its channel and topic; dedup and rate limiting live in the callers
// (internal/service/ledger and the schedulers).
package notify
