package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/gfs-power/gfs-go/pkg/log"
)

// FilterOptions specifies filtering criteria for the filter command.
type FilterOptions struct {
	Output     string
	SequenceID string
	Rail       string
	Op         string
	Stage      string
	Category   string
	TimeStart  string
	TimeEnd    string
}

// Filter parses the string criteria into a log.Filter.
func (o FilterOptions) Filter() (log.Filter, error) {
	f := log.Filter{SequenceID: o.SequenceID, Rail: o.Rail}

	for _, tf := range []struct {
		flag string
		val  string
		dst  **time.Time
	}{
		{"time-start", o.TimeStart, &f.TimeStart},
		{"time-end", o.TimeEnd, &f.TimeEnd},
	} {
		if tf.val == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, tf.val)
		if err != nil {
			return f, fmt.Errorf("invalid %s format: %w", tf.flag, err)
		}
		*tf.dst = &t
	}

	if o.Op != "" {
		op, err := ParseOpFlag(o.Op)
		if err != nil {
			return f, err
		}
		f.Op = &op
	}
	if o.Stage != "" {
		st, err := ParseStageFlag(o.Stage)
		if err != nil {
			return f, err
		}
		f.Stage = &st
	}
	if o.Category != "" {
		c, err := ParseCategoryFlag(o.Category)
		if err != nil {
			return f, err
		}
		f.Category = &c
	}
	return f, nil
}

// RunFilter copies the events matching opts into opts.Output and returns
// how many were written.
func RunFilter(path string, opts FilterOptions) (int, error) {
	filter, err := opts.Filter()
	if err != nil {
		return 0, err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	logger, err := log.NewFileLogger(opts.Output)
	if err != nil {
		return 0, fmt.Errorf("failed to create output logger: %w", err)
	}
	defer logger.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return logger.Count(), fmt.Errorf("failed to read event: %w", err)
		}
		logger.Log(event)
	}

	if err := logger.Err(); err != nil {
		return logger.Count(), fmt.Errorf("failed to write output: %w", err)
	}
	return logger.Count(), nil
}
