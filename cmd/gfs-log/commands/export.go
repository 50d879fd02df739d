package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/gfs-power/gfs-go/pkg/log"
)

// eventSink receives decoded events for one export format.
type eventSink interface {
	put(log.Event) error
	finish() error
}

var exportFormats = map[string]func(io.Writer) (eventSink, error){
	"jsonl": newJSONLSink,
	"csv":   newCSVSink,
}

// ExportFormats returns the supported export format names.
func ExportFormats() []string {
	names := make([]string, 0, len(exportFormats))
	for name := range exportFormats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunExport converts a sequence log to jsonl or csv. An empty output
// writes to stdout.
func RunExport(path, format, output string) error {
	newSink, ok := exportFormats[format]
	if !ok {
		return fmt.Errorf("unknown format: %s (supported: %s)", format, strings.Join(ExportFormats(), ", "))
	}

	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	w := io.Writer(os.Stdout)
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	sink, err := newSink(w)
	if err != nil {
		return err
	}
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return sink.finish()
		}
		if err != nil {
			return fmt.Errorf("failed to read event %d: %w", reader.Scanned()+1, err)
		}
		if err := sink.put(event); err != nil {
			return err
		}
	}
}

type jsonlSink struct{ enc *json.Encoder }

func newJSONLSink(w io.Writer) (eventSink, error) {
	return &jsonlSink{enc: json.NewEncoder(w)}, nil
}

func (s *jsonlSink) put(e log.Event) error {
	if err := s.enc.Encode(e); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return nil
}

func (s *jsonlSink) finish() error { return nil }

var csvHeader = []string{"timestamp", "sequence_id", "rail", "op", "stage", "category", "type", "detail"}

type csvSink struct{ cw *csv.Writer }

func newCSVSink(w io.Writer) (eventSink, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return &csvSink{cw: cw}, nil
}

func (s *csvSink) put(e log.Event) error {
	kind, detail := payload(e)
	row := []string{
		e.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
		e.SequenceID,
		e.Rail,
		e.Op.String(),
		e.Stage.String(),
		e.Category.String(),
		kind,
		detail,
	}
	if err := s.cw.Write(row); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	return nil
}

func (s *csvSink) finish() error {
	s.cw.Flush()
	return s.cw.Error()
}

// payload names the event's payload and renders it as a single cell.
func payload(e log.Event) (kind, detail string) {
	switch {
	case e.Register != nil:
		return "register", fmt.Sprintf("0x%x=0x%x", e.Register.Addr, e.Register.Value)
	case e.Clock != nil:
		if e.Clock.Rate != 0 {
			return "clock", e.Clock.Name + "@" + strconv.FormatUint(e.Clock.Rate, 10)
		}
		return "clock", e.Clock.Name
	case e.Port != nil:
		return "port", strconv.Itoa(e.Port.ID)
	case e.Delay != nil:
		return "delay", e.Delay.Duration.String()
	case e.StateChange != nil:
		return "state", e.StateChange.NewState
	case e.Error != nil:
		return "error", e.Error.Message
	}
	return "unknown", ""
}
