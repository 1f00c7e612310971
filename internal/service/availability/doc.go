// Package availability implements the availability engine: an interval
// scheduler that probes monitored domains over
// HTTPS, classifies the response into up/down/soft_blocked, and alerts on
// state transitions with a 24h per-(domain, alert_type) dedup window.
package availability
