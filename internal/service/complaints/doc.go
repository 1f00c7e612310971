// Package complaints manages complaint records filed against optimizations
// and, at the network level, against whole projects: filing, review,
// resolution with a mandatory resolution note, and the two-way
// complaint-status rollup onto the owning optimization record.
//
// Layering follows the rest of internal/service: the package owns its
// narrow Repository/Renderer/Notifier interfaces, satisfied at wiring time
// by the postgres, templates, and notify packages respectively.
package complaints
