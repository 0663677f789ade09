package audit

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// FormatForPath picks the format from a file extension, defaulting to
// JSON lines.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatCSV
	default:
		return FormatJSONL
	}
}

// Export writes events to w.
func Export(w io.Writer, events []*Event, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	case FormatJSONL:
		return exportJSONL(w, events)
	case FormatCSV:
		return exportCSV(w, events)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

func exportJSONL(w io.Writer, events []*Event) error {
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return nil
}

func exportCSV(w io.Writer, events []*Event) (retErr error) {
	cw := csv.NewWriter(w)
	defer func() {
		cw.Flush()
		if err := cw.Error(); err != nil && retErr == nil {
			retErr = fmt.Errorf("CSV writer flush error: %w", err)
		}
	}()

	if err := cw.Write([]string{"ID", "Timestamp", "Action", "HardwareID", "Status", "Message"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, e := range events {
		record := []string{
			e.ID,
			e.Timestamp.Format(time.RFC3339Nano),
			string(e.Action),
			strconv.Itoa(e.NodeID),
			string(e.Status),
			e.Message,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	return nil
}
