// Package review implements the read-surface formatting for reviews and
// theses: tables for humans, JSONL for tooling.
package review

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/vpalmerio/clawdera/pkg/boardroom"
)

// OutputFormat specifies how to format review list output.
type OutputFormat string

const (
	// OutputFormatDefault uses a table format
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL outputs complete reviews as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"
)

// FormatTable writes reviews as a formatted table to the provided writer.
// Returns the number of reviews formatted.
func FormatTable(w io.Writer, reviews []*boardroom.Review, instanceName string, nowMs int64) int {
	if len(reviews) == 0 {
		fmt.Fprintf(w, "No reviews found for instance '%s'\n", instanceName)
		return 0
	}

	fmt.Fprintf(w, "Reviews for instance '%s':\n\n", instanceName)

	fmt.Fprintf(w, "%-5s %-14s %-10s %-10s %-10s %-10s %s\n",
		"ID", "ASSET", "STATUS", "FEE", "PLEDGED", "PURCHASED", "DEADLINE")
	fmt.Fprintf(w, "%-5s %-14s %-10s %-10s %-10s %-10s %s\n",
		"-----", "--------------", "----------", "----------", "----------", "----------", "------------------------")

	for _, r := range reviews {
		fmt.Fprintf(w, "%-5d %-14s %-10s %-10d %-10d %-10d %s\n",
			r.ID,
			truncate(r.AssetID, 14),
			Status(r, nowMs),
			r.SubmissionFee,
			r.TotalPledged,
			r.TotalPurchased,
			formatDeadline(r.DeadlineMs),
		)
	}

	countMsg := "review"
	if len(reviews) != 1 {
		countMsg = "reviews"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(reviews), countMsg)

	return len(reviews)
}

// FormatJSONL writes reviews as line-delimited JSON (JSONL) to the provided
// writer. Ideal for streaming and processing with tools like jq.
func FormatJSONL(w io.Writer, reviews []*boardroom.Review) error {
	for _, r := range reviews {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal review to JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", string(data)); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}

// FormatSingleJSON writes a single review with its theses as pretty-printed
// JSON. Used in show mode to display complete review details.
func FormatSingleJSON(w io.Writer, r *boardroom.Review, theses []*boardroom.Thesis) error {
	detail := struct {
		Review *boardroom.Review   `json:"review"`
		Theses []*boardroom.Thesis `json:"theses"`
	}{Review: r, Theses: theses}

	data, err := json.MarshalIndent(detail, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal review to JSON: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", string(data)); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}

// Status returns a review's display status at the given time:
// "open" during the window, "due" once the deadline has passed but before
// execution, "executed" after.
func Status(r *boardroom.Review, nowMs int64) string {
	switch {
	case r.Executed:
		return "executed"
	case nowMs >= r.DeadlineMs:
		return "due"
	default:
		return "open"
	}
}

// FilterCriteria defines filtering options for the list command.
// All filters are ANDed together.
type FilterCriteria struct {
	SinceTimestampMs int64  // Unix ms, 0 = no filter (on creation time)
	UntilTimestampMs int64  // Unix ms, 0 = no filter (on creation time)
	AssetID          string // Exact match, empty = no filter
	Status           string // "open", "due" or "executed", empty = no filter
}

// Matches returns true if the review matches all filter criteria.
func (fc *FilterCriteria) Matches(r *boardroom.Review, nowMs int64) bool {
	if fc.SinceTimestampMs > 0 && r.CreatedAtMs < fc.SinceTimestampMs {
		return false
	}
	if fc.UntilTimestampMs > 0 && r.CreatedAtMs > fc.UntilTimestampMs {
		return false
	}
	if fc.AssetID != "" && r.AssetID != fc.AssetID {
		return false
	}
	if fc.Status != "" && Status(r, nowMs) != fc.Status {
		return false
	}
	return true
}

// Filter returns the reviews matching the criteria, preserving order.
func Filter(reviews []*boardroom.Review, fc *FilterCriteria, nowMs int64) []*boardroom.Review {
	if fc == nil {
		return reviews
	}
	out := make([]*boardroom.Review, 0, len(reviews))
	for _, r := range reviews {
		if fc.Matches(r, nowMs) {
			out = append(out, r)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func formatDeadline(deadlineMs int64) string {
	return time.UnixMilli(deadlineMs).UTC().Format(time.RFC3339)
}
