package telemetry

import (
	"io"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// jsonRecordWriter renders each Record as one JSON object per line (JSON
// Lines), the append-friendly analog of the CSV sink: a new record is a
// pure append, never a rewrite of previously-written bytes. Object
// construction follows the same jwriter.ObjectState.Name(...).Value(...)
// pattern the metadata package uses for its own diagnostic JSON.
type jsonRecordWriter struct {
	out io.Writer
}

func newJSONRecordWriter(out io.Writer) *jsonRecordWriter {
	return &jsonRecordWriter{out: out}
}

func (w *jsonRecordWriter) writeHeader() error {
	writer := jwriter.NewWriter()
	obj := writer.Object()
	arr := obj.Name("Columns").Array()
	for _, col := range columnHeader {
		arr.String(col)
	}
	arr.End()
	obj.End()

	return w.flush(writer)
}

func (w *jsonRecordWriter) writeRecord(r Record) error {
	writer := jwriter.NewWriter()
	obj := writer.Object()
	obj.Name("Timestamp").String(r.Timestamp)
	obj.Name("Operation").String(string(r.Operation))
	obj.Name("BlockSize").Int(r.BlockSize)
	obj.Name("Time").Float64(r.Time)
	obj.Name("Fragmentation").Float64(r.Fragmentation)
	obj.Name("Source").String(r.Source)
	obj.Name("CallStack").String(r.CallStack)
	obj.Name("MemoryAddress").String(r.MemoryAddress)
	obj.Name("ThreadID").String(r.ThreadID)
	obj.Name("AllocationID").String(r.AllocationID)
	obj.End()

	return w.flush(writer)
}

func (w *jsonRecordWriter) flush(writer jwriter.Writer) error {
	if err := writer.Error(); err != nil {
		return err
	}
	if _, err := w.out.Write(writer.Bytes()); err != nil {
		return err
	}
	_, err := w.out.Write([]byte("\n"))
	return err
}

func (w *jsonRecordWriter) close() error { return nil }
