package templates

// AllowedVariables is the fixed contract of dotted variable paths a stored
// template may reference: every variable a shipped default template uses
// plus the rest of the operator-facing context families. Every default in
// defaults.go validates against this set (enforced by the package's own
// tests), so a save can never be rejected for using a variable a default
// already renders.
var AllowedVariables = buildAllowedVariables()

func buildAllowedVariables() map[string]bool {
	vars := []string{
		// Actor
		"user.display_name", "user.email", "user.role", "user.id",

		// Network
		"network.name", "network.id", "network.description",

		// Brand
		"brand.name", "brand.id",

		// Node / structure entry
		"node.domain", "node.domain_name", "node.full_path", "node.role",
		"node.domain_role", "node.tier", "node.status", "node.domain_status",
		"node.index_status", "node.target", "node.id",

		// Change / action
		"change.action", "change.action_label", "change.reason",
		"change.before", "change.after", "change.details",

		// Optimization
		"optimization.title", "optimization.description", "optimization.type",
		"optimization.type_label", "optimization.status", "optimization.status_label",
		"optimization.targets", "optimization.keywords", "optimization.reports",
		"optimization.expected_impact",

		// Complaint
		"complaint.reason", "complaint.priority", "complaint.priority_label",
		"complaint.category", "complaint.category_label", "complaint.reports",
		"complaint.status",

		// Domain monitoring
		"domain.name", "domain.expiry_date", "domain.days_until_expiry",
		"domain.registrar", "domain.status", "domain.http_status",
		"domain.response_time",

		// Impact / severity
		"impact.severity", "impact.severity_emoji", "impact.description",
		"impact.affected_count",

		// Timestamp
		"timestamp.gmt7", "timestamp.iso", "timestamp.date", "timestamp.time",

		// Chat tagging
		"chat.leaders", "chat.project_managers", "chat.tagged_users",

		// Structure / hierarchy
		"structure.current", "structure.upstream_chain",
		"structure.downstream_impact", "structure.before_deletion",

		// Reminder
		"reminder.days_in_progress", "reminder.optimization_title",
		"reminder.optimization_status",
	}
	m := make(map[string]bool, len(vars))
	for _, v := range vars {
		m[v] = true
	}
	return m
}
