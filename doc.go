// Package remindme routes reminders written inline in markdown notes to the
// daily notes they are due on.
//
// A reminder is a line such as
//
//	- /remind call the dentist @ next friday
//
// A run extracts every such line from a source note, resolves the date
// expression after the separator to a daily note, appends the content as a
// checklist item under the reminder header of that note and finally wraps the
// source line in the negation marker so the next run skips it:
//
//	~~- /remind call the dentist @ next friday~~
//
// Notes live in a vault: a directory of markdown files with optional YAML
// frontmatter, optionally versioned with Git (one commit per run).
//
// Usage:
//
//	vault, err := remindme.New(ctx, "./notes",
//		remindme.WithDailyNotes("daily", "2006-01-02"),
//		remindme.WithLogger(logger),
//	)
//	report, err := vault.Runner.Run(ctx, "inbox")
//	if err := report.Err(); err != nil {
//		// some reminders were left in place; they are retried on the next run
//	}
package remindme
