package linker

import (
	"fmt"
	"strings"

	"github.com/ignite/seo-noc/internal/domain"
)

const messageRule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// buildDetectionMessage hand-formats the chat message for a new or
// recurring conflict — the linker bypasses the generic template engine
// for this one notification family rather than routing it through an
// allow-listed template.
func buildDetectionMessage(c *domain.Conflict, networkName string, recurring bool) string {
	var b strings.Builder

	header := "⚠️ NEW SEO CONFLICT DETECTED"
	if recurring {
		header = fmt.Sprintf("🔄 RECURRING SEO CONFLICT #%d", c.RecurrenceCount)
	}

	fmt.Fprintln(&b, messageRule)
	fmt.Fprintln(&b, header)
	fmt.Fprintln(&b, messageRule)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Type          : %s\n", c.ConflictType.Label())
	fmt.Fprintf(&b, "Severity      : %s %s\n", c.Severity.Emoji(), strings.ToUpper(string(c.Severity)))
	fmt.Fprintf(&b, "Network       : %s\n", networkName)
	fmt.Fprintf(&b, "Domain        : %s\n", orNA(c.DomainName))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Affected Nodes:")
	fmt.Fprintf(&b, "  • %s\n", c.NodeALabel)
	if c.NodeBLabel != nil && *c.NodeBLabel != "" {
		fmt.Fprintf(&b, "  • %s\n", *c.NodeBLabel)
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, messageRule)
	fmt.Fprintln(&b, "📋 DESCRIPTION:")
	fmt.Fprintln(&b, messageRule)
	fmt.Fprintln(&b, c.Description)
	fmt.Fprintln(&b)

	if c.Suggestion != nil && *c.Suggestion != "" {
		fmt.Fprintln(&b, messageRule)
		fmt.Fprintln(&b, "💡 SUGGESTED FIX:")
		fmt.Fprintln(&b, messageRule)
		fmt.Fprintln(&b, *c.Suggestion)
		fmt.Fprintln(&b)
	}

	fmt.Fprintln(&b, messageRule)
	fmt.Fprintln(&b, "⏰ ACTION REQUIRED")
	fmt.Fprintln(&b, messageRule)
	fmt.Fprintln(&b, "An optimization task has been auto-created.")
	fmt.Fprint(&b, "Please review and resolve this conflict.")

	if recurring {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b)
		fmt.Fprintf(&b, "⚠️ This conflict has recurred %d time(s)!\n", c.RecurrenceCount)
		fmt.Fprint(&b, "Consider a permanent structural fix.")
	}

	return b.String()
}

// buildResolutionMessage hand-formats the conflict-resolved chat message.
func buildResolutionMessage(c *domain.Conflict, networkName, resolverName string) string {
	var b strings.Builder

	fmt.Fprintln(&b, messageRule)
	fmt.Fprintln(&b, "✅ SEO CONFLICT RESOLVED")
	fmt.Fprintln(&b, messageRule)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Type          : %s\n", c.ConflictType.Label())
	fmt.Fprintf(&b, "Network       : %s\n", networkName)
	fmt.Fprintf(&b, "Domain        : %s\n", orNA(c.DomainName))
	fmt.Fprintf(&b, "Resolved By   : %s\n", resolverName)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "The conflict has been resolved and the")
	fmt.Fprint(&b, "SEO structure has been validated.")

	if c.RecurrenceCount > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b)
		fmt.Fprintf(&b, "📊 This conflict had recurred %d time(s).", c.RecurrenceCount)
	}

	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
