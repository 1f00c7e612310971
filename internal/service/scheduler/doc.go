// Package scheduler implements the reminder and digest loops:
// unmonitored-domain reminders, in-progress-optimization reminders, and
// the weekly HTML digest email.
package scheduler
