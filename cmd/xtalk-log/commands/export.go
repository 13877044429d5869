package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/crosstalk-go/crosstalk/pkg/trace"
)

// jsonEvent is the JSONL shape of a trace event. Absent values are null.
type jsonEvent struct {
	Timestamp     string   `json:"timestamp"`
	Group         string   `json:"group"`
	Handle        string   `json:"handle,omitempty"`
	Kind          string   `json:"kind"`
	Action        string   `json:"action"`
	Value         []string `json:"value"`
	OldValue      []string `json:"old_value"`
	Listeners     int      `json:"listeners,omitempty"`
	Contributions int      `json:"contributions,omitempty"`
}

// RunExport exports the trace file to format ("jsonl" or "csv"), writing to
// output or stdout.
func RunExport(path, format, output string) error {
	if format != "jsonl" && format != "csv" {
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	reader, err := trace.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "csv" {
		return exportCSV(reader, w)
	}
	return exportJSONL(reader, w)
}

func exportJSONL(reader *trace.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		je := jsonEvent{
			Timestamp:     event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			Group:         event.Group,
			Handle:        event.HandleID,
			Kind:          event.Kind.String(),
			Action:        event.Action.String(),
			Value:         presentOrNil(event.Keys, event.Present),
			OldValue:      presentOrNil(event.OldKeys, event.OldPresent),
			Listeners:     event.Listeners,
			Contributions: event.Contributions,
		}
		if err := encoder.Encode(je); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

// presentOrNil returns a non-nil slice for present values so empty sets
// encode as [] rather than null.
func presentOrNil(ks []string, present bool) []string {
	if !present {
		return nil
	}
	if ks == nil {
		return []string{}
	}
	return ks
}

func exportCSV(reader *trace.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "group", "handle", "kind", "action", "value", "old_value", "listeners", "contributions"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.Group,
			event.HandleID,
			event.Kind.String(),
			event.Action.String(),
			csvKeys(event.Keys, event.Present),
			csvKeys(event.OldKeys, event.OldPresent),
			strconv.Itoa(event.Listeners),
			strconv.Itoa(event.Contributions),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return cw.Error()
}

// csvKeys joins keys with "|"; absent values are empty cells.
func csvKeys(ks []string, present bool) string {
	if !present {
		return ""
	}
	return strings.Join(ks, "|")
}
