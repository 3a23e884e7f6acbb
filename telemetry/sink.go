package telemetry

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/cockroachdb/errors"
)

// columnHeader is emitted once, before any record, whenever the output
// target is new or empty.
var columnHeader = []string{
	"Timestamp", "Operation", "BlockSize", "Time", "Fragmentation",
	"Source", "CallStack", "MemoryAddress", "ThreadID", "AllocationID",
}

// Format selects the on-disk encoding for a Sink.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Sink is a thread-safe, append-only tabular writer. Every call to Write
// acquires an internal mutex, matching the original DataLogger's
// logMutex-guarded file writes.
type Sink struct {
	mu     sync.Mutex
	format Format
	file   *os.File
	csvW   *csv.Writer
	jsonW  *jsonRecordWriter
}

// Open creates or appends to the tabular sink at path, in the requested
// format. The column header is written exactly once, only when the
// destination is new or empty.
func Open(path string, format Format) (*Sink, error) {
	if format != FormatCSV && format != FormatJSON {
		return nil, errors.Newf("telemetry: unknown format %q", format)
	}

	info, statErr := os.Stat(path)
	isNewOrEmpty := os.IsNotExist(statErr) || (statErr == nil && info.Size() == 0)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "telemetry: opening %s", path)
	}

	s := &Sink{format: format, file: f}

	switch format {
	case FormatCSV:
		s.csvW = csv.NewWriter(f)
		if isNewOrEmpty {
			if err := s.csvW.Write(columnHeader); err != nil {
				f.Close()
				return nil, errors.Wrap(err, "telemetry: writing header")
			}
			s.csvW.Flush()
		}
	case FormatJSON:
		s.jsonW = newJSONRecordWriter(f)
		if isNewOrEmpty {
			if err := s.jsonW.writeHeader(); err != nil {
				f.Close()
				return nil, errors.Wrap(err, "telemetry: writing header")
			}
		}
	}

	return s, nil
}

// Write appends a single record, flushing immediately so that a crashed
// benchmark process leaves a truncated-but-valid file rather than a
// buffered-but-lost one.
func (s *Sink) Write(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.format {
	case FormatCSV:
		row := []string{
			r.Timestamp,
			string(r.Operation),
			strconv.Itoa(r.BlockSize),
			formatFloat(r.Time),
			formatFloat(r.Fragmentation),
			r.Source,
			r.CallStack,
			r.MemoryAddress,
			r.ThreadID,
			r.AllocationID,
		}
		if err := s.csvW.Write(row); err != nil {
			return errors.Wrap(err, "telemetry: writing record")
		}
		s.csvW.Flush()
		return s.csvW.Error()
	case FormatJSON:
		return s.jsonW.writeRecord(r)
	default:
		return errors.Newf("telemetry: unknown format %q", s.format)
	}
}

// Close flushes and closes the underlying file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == FormatJSON {
		if err := s.jsonW.close(); err != nil {
			s.file.Close()
			return err
		}
	}
	return s.file.Close()
}

var _ io.Closer = (*Sink)(nil)
