package wordcount

import "fmt"

// Status is the per-document progress of a job. It only moves from
// StatusProcessing to one of the terminal values.
type Status int

const (
	StatusProcessing Status = iota
	StatusCompleted
	StatusFailedScan
	StatusFailedTimeout
)

func (s Status) String() string {
	switch s {
	case StatusProcessing:
		return "processing"
	case StatusCompleted:
		return "completed"
	case StatusFailedScan:
		return "failed_scan"
	case StatusFailedTimeout:
		return "failed_timeout"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) Terminal() bool {
	return s != StatusProcessing
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
