package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/aretw0/remindme"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func printReport(w io.Writer, r remindme.Report) {
	fmt.Fprintf(w, "%s %s\n", bold(r.Source), gray(r.RunID))
	if r.Extracted == 0 && len(r.Failures) == 0 {
		fmt.Fprintf(w, "  %s\n", gray("no reminders"))
		return
	}
	for _, rem := range r.Routed {
		fmt.Fprintf(w, "  %s %s %s %s\n", green("✓"), strings.TrimSpace(rem.Content), gray("->"), cyan(rem.Destination))
	}
	for _, id := range r.Created {
		fmt.Fprintf(w, "  %s created %s\n", green("+"), cyan(id))
	}
	for _, err := range r.Failures {
		fmt.Fprintf(w, "  %s %v\n", red("✗"), err)
	}
	if r.Committed {
		fmt.Fprintf(w, "  %s\n", gray("committed"))
	}
}

func printPreview(w io.Writer, p remindme.Preview) {
	fmt.Fprintf(w, "%s %s\n", bold(p.Source), yellow("(dry run)"))
	if len(p.Changes) == 0 && len(p.Failures) == 0 {
		fmt.Fprintf(w, "  %s\n", gray("no changes"))
		return
	}
	for _, c := range p.Changes {
		label := "modify"
		if c.Create {
			label = "create"
		}
		fmt.Fprintf(w, "%s %s\n", cyan(c.ID), gray(label))
		for _, line := range strings.SplitAfter(c.Diff(), "\n") {
			switch {
			case strings.HasPrefix(line, "+"):
				fmt.Fprint(w, green(line))
			case strings.HasPrefix(line, "-"):
				fmt.Fprint(w, red(line))
			default:
				fmt.Fprint(w, gray(line))
			}
		}
	}
	for _, err := range p.Failures {
		fmt.Fprintf(w, "  %s %v\n", red("✗"), err)
	}
}
