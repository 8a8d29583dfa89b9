package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/zerr"
)

// WriteRoots writes one entry module name per line.
func WriteRoots(w io.Writer, entries []domain.InternedString) error {
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, e.String()); err != nil {
			return zerr.Wrap(err, "failed to write entries")
		}
	}
	return nil
}

// WritePlanJSON writes plan as indented JSON.
func WritePlanJSON(w io.Writer, plan *domain.Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(plan); err != nil {
		return zerr.Wrap(err, "failed to encode plan")
	}
	return nil
}

// WritePlanText writes a human-readable summary of plan.
func WritePlanText(w io.Writer, plan *domain.Plan) error {
	var b strings.Builder
	for _, chunk := range plan.Chunks {
		shared := make(map[domain.InternedString]struct{}, len(chunk.Shared))
		for _, m := range chunk.Shared {
			shared[m] = struct{}{}
		}

		fmt.Fprintf(&b, "chunk %s (%d modules)\n", chunk.Entry, len(chunk.Modules))
		for _, m := range chunk.Modules {
			marker := ""
			if _, ok := shared[m]; ok {
				marker = " [shared]"
			}
			fmt.Fprintf(&b, "  %s %s%s\n", m, plan.Fingerprints[m.String()], marker)
		}
		for _, e := range chunk.Circular {
			fmt.Fprintf(&b, "  circular %s -> %s\n", e.From, e.To)
		}
	}
	if len(plan.Changed) > 0 {
		b.WriteString("changed\n")
		for _, m := range plan.Changed {
			fmt.Fprintf(&b, "  %s\n", m)
		}
	}
	if len(plan.UnusedExports) > 0 {
		b.WriteString("unused exports\n")
		for _, ref := range plan.UnusedExports {
			fmt.Fprintf(&b, "  %s.%s\n", ref.Module, ref.Export)
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return zerr.Wrap(err, "failed to write plan")
	}
	return nil
}
