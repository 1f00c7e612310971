// Package api is the thin operator-triggered HTTP surface: a manual
// conflict-detection trigger, network and node mutation routes, the
// complaint lifecycle, template/digest previews, a test-alert action, and
// health/readiness checks. It is deliberately NOT a general CRUD API —
// brand/user/registrar administration and auth/role storage are left to an
// external collaborator process; every handler here drives an existing
// engine through its own validation pipeline or renders a read-only
// preview.
//
// Built on a go-chi/chi/v5 router with go-chi/cors, a Handlers struct
// holding service references, and a HealthChecker pinging every live
// dependency.
package api
