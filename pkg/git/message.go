package git

import (
	"fmt"
	"strings"
)

// Commit types used by remindme.
const (
	CommitTypeFeat  = "feat"
	CommitTypeFix   = "fix"
	CommitTypeChore = "chore"
)

// Footer is appended to every commit created by remindme.
const Footer = "Powered-by: remindme"

// FormatCommitMessage builds a Conventional Commit message:
//
//	<type>(<scope>): <subject>
//
//	<body>
//
//	Powered-by: remindme
//	Run-Id: <runID>
func FormatCommitMessage(ctype, scope, subject, body, runID string) string {
	var sb strings.Builder

	if ctype == "" {
		ctype = CommitTypeChore
	}
	sb.WriteString(ctype)
	if scope != "" {
		sb.WriteString("(" + scope + ")")
	}
	sb.WriteString(": ")
	sb.WriteString(subject)

	if body = strings.TrimSpace(body); body != "" {
		sb.WriteString("\n\n")
		sb.WriteString(body)
	}

	sb.WriteString("\n\n")
	sb.WriteString(Footer)
	if runID != "" {
		sb.WriteString("\nRun-Id: " + runID)
	}
	return sb.String()
}

// RouteMessage is the commit message of a run that routed n reminders out of source.
// body lists one destination per line.
func RouteMessage(n int, source string, destinations []string, runID string) string {
	noun := "reminders"
	if n == 1 {
		noun = "reminder"
	}
	var body strings.Builder
	for _, d := range destinations {
		body.WriteString("- " + d + "\n")
	}
	return FormatCommitMessage(CommitTypeFeat, "reminders",
		fmt.Sprintf("route %d %s from %s", n, noun, source), body.String(), runID)
}

// AppendFooter appends the footer to a free-form message if not present.
func AppendFooter(msg string) string {
	if strings.Contains(msg, Footer) {
		return msg
	}
	msg = strings.TrimRight(msg, "\n")
	return msg + "\n\n" + Footer
}
