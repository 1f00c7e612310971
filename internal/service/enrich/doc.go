// Package enrich implements the SEO Context Enricher: for a
// given domain, the upstream authority chain to its money site, the
// downstream impact set, and the strict severity table derived from both.
package enrich
