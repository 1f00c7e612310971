// Package expiration implements the expiration engine: a
// daily scheduler (plus a startup pass) that alerts on both registrar
// expiration and TLS certificate expiration, each its own independent
// clock with its own dedup window.
package expiration
