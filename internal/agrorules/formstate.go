package agrorules

import "errors"

// FormMode enumerates the states of a record form session.
type FormMode string

const (
	// FormClosed means no form is open.
	FormClosed FormMode = "CLOSED"
	// FormCreating means the form is open for a new record.
	FormCreating FormMode = "CREATING"
	// FormEditing means the form is open on an existing record.
	FormEditing FormMode = "EDITING"
)

// ErrFormAlreadyOpen indicates an open attempt while a form is active.
var ErrFormAlreadyOpen = errors.New("agrorules: form already open")

// ErrInvalidRecordID indicates an edit attempt without a record.
var ErrInvalidRecordID = errors.New("agrorules: record id required for editing")

// FormSession tracks which of closed/creating/editing(record) a form is in.
// Exactly one state holds at any time; the record pointer only exists in the
// editing state, replacing the drifting boolean-plus-nullable-pointer pairs
// the pages used to carry.
type FormSession struct {
	mode     FormMode
	recordID int64
}

// NewFormSession starts closed.
func NewFormSession() *FormSession {
	return &FormSession{mode: FormClosed}
}

// Mode reports the current state.
func (s *FormSession) Mode() FormMode {
	if s == nil || s.mode == "" {
		return FormClosed
	}
	return s.mode
}

// EditingID returns the record under edit, valid only in the editing state.
func (s *FormSession) EditingID() (int64, bool) {
	if s.Mode() != FormEditing {
		return 0, false
	}
	return s.recordID, true
}

// OpenCreate transitions closed -> creating.
func (s *FormSession) OpenCreate() error {
	if s.Mode() != FormClosed {
		return ErrFormAlreadyOpen
	}
	s.mode = FormCreating
	s.recordID = 0
	return nil
}

// OpenEdit transitions closed -> editing(recordID).
func (s *FormSession) OpenEdit(recordID int64) error {
	if recordID <= 0 {
		return ErrInvalidRecordID
	}
	if s.Mode() != FormClosed {
		return ErrFormAlreadyOpen
	}
	s.mode = FormEditing
	s.recordID = recordID
	return nil
}

// Close returns to the closed state from anywhere. Closing a closed form is
// a no-op.
func (s *FormSession) Close() {
	s.mode = FormClosed
	s.recordID = 0
}
