package output

// Formatter defines the interface for output formatters.
//
// Implementers must accept records one at a time via WriteRecord and
// finish their output in Flush. WriteRecord may buffer; output is only
// guaranteed complete after Flush returns.
type Formatter interface {
	// WriteRecord emits (or buffers) one record.
	WriteRecord(rec Record) error

	// Flush completes the output and reports any deferred write error.
	Flush() error
}
