package engine

import "errors"

// ErrUnexpectedReply is returned by Count when the job answers with
// something other than a JobResult.
var ErrUnexpectedReply = errors.New("unexpected reply from job coordinator")
