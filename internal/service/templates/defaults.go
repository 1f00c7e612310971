package templates

import "github.com/ignite/seo-noc/internal/domain"

// DefaultTemplates is the code-embedded fallback used whenever no operator
// override exists for a (channel, event_type) pair. Every body here is
// checked against AllowedVariables by the package's own tests.
var DefaultTemplates = buildDefaultTemplates()

func buildDefaultTemplates() map[domain.TemplateKey]domain.NotificationTemplate {
	entries := []struct {
		channel domain.Channel
		event   domain.EventType
		title   string
		body    string
	}{
		{domain.ChannelChat, domain.EventSEOChange, "SEO Structure Update",
			"{{impact.severity_emoji}} SEO Structure Update\nNetwork: {{network.name}}\nNode: {{node.full_path}} ({{node.domain}})\nAction: {{change.action_label}}\nChain: {{structure.upstream_chain}}\nBy: {{user.display_name}}\nReason: {{change.reason}}\nTime: {{timestamp.gmt7}}"},
		{domain.ChannelEmail, domain.EventSEOChange, "SEO Structure Update — {{network.name}}",
			"A structure change was made on {{network.name}}.\n\nNode: {{node.full_path}} ({{node.domain}})\nAction: {{change.action_label}}\nChain: {{structure.upstream_chain}}\nChanged by: {{user.display_name}} ({{user.email}})\nReason: {{change.reason}}\nTimestamp: {{timestamp.iso}}"},

		{domain.ChannelChat, domain.EventNetworkCreated, "SEO Network Created",
			"🆕 New SEO network \"{{network.name}}\" created by {{user.display_name}} for brand {{brand.name}}."},
		{domain.ChannelEmail, domain.EventNetworkCreated, "New SEO Network: {{network.name}}",
			"A new SEO network, \"{{network.name}}\", was created under brand {{brand.name}} by {{user.display_name}} ({{user.email}})."},

		{domain.ChannelChat, domain.EventOptimization, "Optimization Planned",
			"📋 New optimization planned: {{optimization.title}}\nNetwork: {{network.name}}\nTargets: {{optimization.targets}}\nExpected impact: {{optimization.expected_impact}}\nBy: {{user.display_name}}"},
		{domain.ChannelEmail, domain.EventOptimization, "Optimization Planned: {{optimization.title}}",
			"A new optimization was planned on {{network.name}}.\n\nTitle: {{optimization.title}}\nDescription: {{optimization.description}}\nTargets: {{optimization.targets}}\nKeywords: {{optimization.keywords}}\nExpected impact: {{optimization.expected_impact}}\nCreated by: {{user.display_name}}"},

		{domain.ChannelChat, domain.EventOptimizationStatus, "Optimization Status Changed",
			"🔄 Optimization \"{{optimization.title}}\" is now {{optimization.status_label}}."},
		{domain.ChannelEmail, domain.EventOptimizationStatus, "Optimization Status Changed: {{optimization.title}}",
			"The optimization \"{{optimization.title}}\" on {{network.name}} changed status to {{optimization.status_label}}."},

		{domain.ChannelChat, domain.EventComplaint, "Complaint Filed",
			"⚠️ Complaint filed against \"{{optimization.title}}\": {{complaint.reason}} (priority: {{complaint.priority_label}})"},
		{domain.ChannelEmail, domain.EventComplaint, "Complaint Filed: {{optimization.title}}",
			"A complaint was filed against optimization \"{{optimization.title}}\" on {{network.name}}.\n\nReason: {{complaint.reason}}\nPriority: {{complaint.priority_label}}\nCategory: {{complaint.category_label}}"},

		{domain.ChannelChat, domain.EventProjectComplaint, "Network Complaint",
			"⚠️ Network-level complaint on {{network.name}}: {{complaint.reason}} (priority: {{complaint.priority_label}})"},
		{domain.ChannelEmail, domain.EventProjectComplaint, "Network Complaint: {{network.name}}",
			"A network-level complaint was filed on {{network.name}}.\n\nReason: {{complaint.reason}}\nPriority: {{complaint.priority_label}}"},

		{domain.ChannelChat, domain.EventReminder, "Optimization Reminder",
			"⏰ Reminder: \"{{reminder.optimization_title}}\" has been {{reminder.optimization_status}} for {{reminder.days_in_progress}} days."},
		{domain.ChannelEmail, domain.EventReminder, "Reminder: {{reminder.optimization_title}} still open",
			"\"{{reminder.optimization_title}}\" has been {{reminder.optimization_status}} for {{reminder.days_in_progress}} days without resolution."},

		{domain.ChannelChat, domain.EventDomainExpiration, "Domain Expiring",
			"{{impact.severity_emoji}} Domain {{domain.name}} expires in {{domain.days_until_expiry}} days (registrar: {{domain.registrar}})."},
		{domain.ChannelEmail, domain.EventDomainExpiration, "Domain Expiring Soon: {{domain.name}}",
			"{{domain.name}} is due to expire in {{domain.days_until_expiry}} days.\n\nRegistrar: {{domain.registrar}}\nCurrent status: {{domain.status}}\nAffects: {{impact.affected_count}} structure node(s), severity {{impact.severity}}."},

		{domain.ChannelChat, domain.EventDomainDown, "Domain Down",
			"{{impact.severity_emoji}} Domain {{domain.name}} is {{domain.status}} (HTTP {{domain.http_status}})."},
		{domain.ChannelEmail, domain.EventDomainDown, "Domain Availability Alert: {{domain.name}}",
			"{{domain.name}} transitioned to {{domain.status}}.\n\nHTTP status: {{domain.http_status}}\nResponse time: {{domain.response_time}}\nSeverity: {{impact.severity}}\nAffects: {{impact.affected_count}} structure node(s)."},

		{domain.ChannelChat, domain.EventNodeDeleted, "Node Deleted",
			"🗑 Node {{node.full_path}} on {{node.domain_name}} was deleted by {{user.display_name}}.\nReason: {{change.reason}}"},
		{domain.ChannelEmail, domain.EventNodeDeleted, "Node Deleted: {{node.full_path}}",
			"Node {{node.full_path}} on {{node.domain_name}} was deleted by {{user.display_name}} ({{user.email}}).\n\nReason: {{change.reason}}\nPrior structure: {{structure.before_deletion}}"},

		{domain.ChannelChat, domain.EventTest, "Test Notification",
			"✅ Test notification from the SEO NOC — if you can read this, delivery is working."},
		{domain.ChannelEmail, domain.EventTest, "SEO NOC Test Notification",
			"This is a test notification confirming delivery is configured correctly for this channel."},
	}

	out := make(map[domain.TemplateKey]domain.NotificationTemplate, len(entries))
	for _, e := range entries {
		out[domain.TemplateKey{Channel: e.channel, EventType: e.event}] = domain.NotificationTemplate{
			Channel:             e.channel,
			EventType:           e.event,
			Title:               e.title,
			TemplateBody:        e.body,
			DefaultTemplateBody: e.body,
			Enabled:             true,
		}
	}
	return out
}
