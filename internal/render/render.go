// Package render formats realm outcomes for humans and machines.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alexisbeaulieu97/realmctl/internal/journal"
	"github.com/alexisbeaulieu97/realmctl/internal/realm"
)

// Format selects the output encoding.
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
)

// ParseFormat accepts "human" or "json", case-insensitively.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatHuman, "":
		return FormatHuman, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want human or json)", value)
	}
}

// Result is the caller-facing report for one request. Failed results carry a
// message; successful ones do not.
type Result struct {
	ID      string   `json:"id,omitempty"`
	Action  string   `json:"action"`
	Realm   string   `json:"realm,omitempty"`
	Flags   []string `json:"flags,omitempty"`
	Success bool     `json:"success"`
	Changed bool     `json:"changed"`
	Skipped bool     `json:"skipped,omitempty"`
	RC      int      `json:"rc"`
	Stdout  string   `json:"stdout"`
	Stderr  string   `json:"stderr"`
	Message string   `json:"message,omitempty"`
}

// FromOutcome converts an outcome. A nil outcome means the request never ran,
// so err supplies the message.
func FromOutcome(id string, action realm.Action, out *realm.Outcome, err error) Result {
	if out == nil {
		res := Result{ID: id, Action: string(action), RC: -1}
		if err != nil {
			res.Message = err.Error()
		}
		return res
	}
	return Result{
		ID:      id,
		Action:  string(out.Action),
		Realm:   out.Realm,
		Flags:   out.Flags,
		Success: out.Success,
		Changed: out.Changed,
		Skipped: out.Skipped,
		RC:      out.RC,
		Stdout:  out.Stdout,
		Stderr:  out.Stderr,
		Message: out.Message,
	}
}

// Results writes one or more results. JSON output is a single object for one
// result and an array otherwise.
func Results(w io.Writer, format Format, results ...Result) error {
	if format == FormatJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if len(results) == 1 {
			return encoder.Encode(results[0])
		}
		if results == nil {
			results = []Result{}
		}
		return encoder.Encode(results)
	}

	st := newStyles(w)
	var b strings.Builder
	failed := 0
	for _, res := range results {
		b.WriteString(humanResult(st, res))
		b.WriteString("\n")
		if !res.Success {
			failed++
		}
	}
	if len(results) > 1 {
		b.WriteString(st.summary.Render(fmt.Sprintf("Requests: %d/%d succeeded", len(results)-failed, len(results))))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func humanResult(st styles, res Result) string {
	label := res.Action
	if res.ID != "" {
		label = res.ID + " (" + res.Action + ")"
	}
	if res.Realm != "" {
		label += " " + res.Realm
	}

	var lines []string
	switch {
	case !res.Success:
		lines = append(lines, st.failure.Render("✗ "+label)+st.muted.Render(fmt.Sprintf(" rc=%d", res.RC)))
		if res.Message != "" {
			lines = append(lines, "  "+res.Message)
		}
	case res.Skipped:
		lines = append(lines, st.skipped.Render("○ "+label+" unchanged"))
	default:
		state := "ok"
		if res.Changed {
			state = "changed"
		}
		lines = append(lines, st.success.Render("✓ "+label+" "+state))
	}

	if out := strings.TrimRight(res.Stdout, "\n"); out != "" && res.Success {
		for _, line := range strings.Split(out, "\n") {
			lines = append(lines, "  "+line)
		}
	}
	return strings.Join(lines, "\n")
}

// History writes journal entries, newest first.
func History(w io.Writer, format Format, entries []journal.Entry) error {
	if format == FormatJSON {
		if entries == nil {
			entries = []journal.Entry{}
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}

	st := newStyles(w)
	var b strings.Builder
	if len(entries) == 0 {
		b.WriteString(st.muted.Render("No invocations recorded"))
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString(st.title.Render("Recent realm invocations"))
	b.WriteString("\n")
	for _, e := range entries {
		status := st.success.Render("✓")
		switch {
		case !e.Success:
			status = st.failure.Render("✗")
		case e.Skipped:
			status = st.skipped.Render("○")
		}
		line := fmt.Sprintf("%s %s %-8s rc=%-3d %s", status, e.CreatedAt.Format("2006-01-02 15:04:05"), e.Action, e.RC, e.Realm)
		b.WriteString(strings.TrimRight(line, " "))
		if e.Flags != "" {
			b.WriteString(st.muted.Render(" [" + e.Flags + "]"))
		}
		b.WriteString("\n")
		if e.Message != "" {
			b.WriteString("  " + e.Message + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
