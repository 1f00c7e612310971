// Package templates implements the Notification Template Engine: a
// deterministic, allow-listed `{{a.b.c}}` string renderer with no loops, no
// conditionals, and no I/O inside a template body. Complex formatting
// (joining lists, labeling enums, localizing timestamps) happens in the
// caller's context builder before the template ever sees the data.
package templates
