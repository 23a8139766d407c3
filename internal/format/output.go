// Package format writes CLI command output.
package format

import (
	"encoding/json"
	"fmt"
	"io"
)

// Write writes strict JSON output for CLI commands.
//
// NOTE: Output stays strict JSON only so it is safe to pipe into jq and
// scripts. If a command needs to communicate how to fetch more data, it
// should add a `meta` object rather than prose.
func Write(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// Envelope wraps a payload the way every command reports it.
func Envelope(v any) map[string]any {
	return map[string]any{"data": v}
}
