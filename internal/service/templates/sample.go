package templates

// SampleContext is the fixed preview context used by Preview so operators
// can see representative output before saving a template edit.
func SampleContext() map[string]interface{} {
	return map[string]interface{}{
		"user": map[string]interface{}{
			"display_name": "Jordan Reyes",
			"email":        "jordan.reyes@example.com",
			"role":         "seo_manager",
			"id":           "usr_sample",
		},
		"network": map[string]interface{}{
			"name":        "Comparison Hub Network",
			"id":          "net_sample",
			"description": "Brand comparison/review funnel",
		},
		"brand": map[string]interface{}{
			"name": "Acme Brands",
			"id":   "brand_sample",
		},
		"node": map[string]interface{}{
			"domain":        "supporting-site.com",
			"domain_name":   "supporting-site.com",
			"full_path":     "supporting-site.com/best-widgets",
			"role":          "Supporting",
			"domain_role":   "supporting",
			"tier":          "2",
			"status":        "Canonical",
			"domain_status": "canonical",
			"index_status":  "index",
			"target":        "money-site.com",
			"id":            "entry_sample",
		},
		"change": map[string]interface{}{
			"action":       "relink_node",
			"action_label": "Node Relinked",
			"reason":       "Consolidating authority under the new pillar page",
			"before":       "target: old-hub.com",
			"after":        "target: money-site.com",
			"details":      "Target entry changed",
		},
		"optimization": map[string]interface{}{
			"title":           "Consolidate duplicate comparison pages",
			"description":     "Merge three near-duplicate pages into one canonical comparison",
			"type":            "consolidation",
			"type_label":      "Content Consolidation",
			"status":          "in_progress",
			"status_label":    "In Progress",
			"targets":         []string{"supporting-a.com", "supporting-b.com"},
			"keywords":        []string{"best widgets", "widget comparison"},
			"reports":         []string{"https://analytics.example.com/report/42"},
			"expected_impact": []string{"ranking", "crawl"},
		},
		"complaint": map[string]interface{}{
			"reason":         "Traffic dropped after the relink",
			"priority":       "high",
			"priority_label": "High",
			"category":       "ranking_drop",
			"category_label": "Ranking Drop",
			"reports":        []string{"https://analytics.example.com/report/43"},
			"status":         "under_review",
		},
		"domain": map[string]interface{}{
			"name":              "supporting-site.com",
			"expiry_date":       "2026-09-15",
			"days_until_expiry": "14",
			"registrar":         "Namecheap",
			"status":            "down",
			"http_code":         "503",
			"http_status":       "503",
			"response_time":     "timeout",
		},
		"impact": map[string]interface{}{
			"severity":        "high",
			"severity_emoji":  "🟠",
			"description":     "Reaches a tier-1 supporting node for the money site",
			"affected_count":  "3",
		},
		"timestamp": map[string]interface{}{
			"gmt7": "2026-07-31 14:05 GMT+7",
			"iso":  "2026-07-31T07:05:00Z",
			"date": "2026-07-31",
			"time": "14:05",
		},
		"chat": map[string]interface{}{
			"leaders":          []string{"@jordan", "@morgan"},
			"project_managers": []string{"@taylor"},
			"tagged_users":     []string{"@jordan", "@taylor"},
		},
		"structure": map[string]interface{}{
			"current":            "money-site.com [Primary] → supporting-a.com [Canonical] → supporting-site.com [Canonical]",
			"upstream_chain":     "supporting-site.com [Canonical] → supporting-a.com [Canonical] → money-site.com [Primary]",
			"downstream_impact":  "2 nodes",
			"before_deletion":    "supporting-a.com [Canonical] → supporting-site.com/best-widgets [Canonical]",
		},
		"reminder": map[string]interface{}{
			"days_in_progress":     "9",
			"optimization_title":   "Consolidate duplicate comparison pages",
			"optimization_status":  "in_progress",
		},
	}
}
