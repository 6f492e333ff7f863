package actor

import "errors"

var (
	ErrMailboxClosed = errors.New("mailbox closed")
	ErrNameTaken     = errors.New("actor name already in use")
	ErrEmptyName     = errors.New("actor name is empty")
	ErrSystemStopped = errors.New("actor system stopped")
	ErrDeadLetter    = errors.New("message not delivered")
)
