package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"fundvote/internal/model"
)

type printer struct {
	format string
}

func newPrinter(format string) (printer, error) {
	switch f := strings.ToLower(format); f {
	case "table", "json", "yaml":
		return printer{format: f}, nil
	}
	return printer{}, fmt.Errorf("unknown output format %q (table, json, yaml)", format)
}

func (p printer) proposals(w io.Writer, items []model.Proposal) error {
	switch p.format {
	case "json":
		return writeJSON(w, items)
	case "yaml":
		return yaml.NewEncoder(w).Encode(items)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tFUNDING\tNET\tUP\tDOWN\tCREATED\tTITLE")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%d\t%d\t%d\t%s\t%s\n",
			it.ID, it.Status, it.Funding, it.Votes.Net(), it.Votes.Upvotes, it.Votes.Downvotes,
			it.CreatedAt.Format(time.DateOnly), it.Title)
	}
	return tw.Flush()
}

func (p printer) proposal(w io.Writer, it model.Proposal) error {
	switch p.format {
	case "json":
		return writeJSON(w, it)
	case "yaml":
		return yaml.NewEncoder(w).Encode(it)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", it.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", it.Title)
	fmt.Fprintf(tw, "Institution:\t%s\n", it.Institution)
	fmt.Fprintf(tw, "Status:\t%s\n", it.Status)
	fmt.Fprintf(tw, "Funding:\t%.1f\n", it.Funding)
	fmt.Fprintf(tw, "Duration:\t%d months\n", it.Duration)
	fmt.Fprintf(tw, "Created:\t%s\n", it.CreatedAt.Format(time.DateOnly))
	fmt.Fprintf(tw, "Votes:\t+%d / -%d (net %d)\n", it.Votes.Upvotes, it.Votes.Downvotes, it.Votes.Net())
	fmt.Fprintf(tw, "Abstract:\t%s\n", it.Abstract)
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
