package agrorules

import (
	"errors"
	"testing"
)

func TestFormSession_CreateLifecycle(t *testing.T) {
	s := NewFormSession()
	if s.Mode() != FormClosed {
		t.Fatalf("new session should start closed, got %s", s.Mode())
	}
	if err := s.OpenCreate(); err != nil {
		t.Fatalf("OpenCreate: %v", err)
	}
	if s.Mode() != FormCreating {
		t.Fatalf("expected creating, got %s", s.Mode())
	}
	if err := s.OpenEdit(5); !errors.Is(err, ErrFormAlreadyOpen) {
		t.Fatalf("opening over an open form must fail, got %v", err)
	}
	s.Close()
	if s.Mode() != FormClosed {
		t.Fatalf("expected closed after Close, got %s", s.Mode())
	}
}

func TestFormSession_EditCarriesRecord(t *testing.T) {
	s := NewFormSession()
	if err := s.OpenEdit(42); err != nil {
		t.Fatalf("OpenEdit: %v", err)
	}
	id, ok := s.EditingID()
	if !ok || id != 42 {
		t.Fatalf("expected editing record 42, got %d/%v", id, ok)
	}
	s.Close()
	if _, ok := s.EditingID(); ok {
		t.Fatalf("closed session must not expose a record pointer")
	}
}

func TestFormSession_EditRequiresRecord(t *testing.T) {
	s := NewFormSession()
	if err := s.OpenEdit(0); !errors.Is(err, ErrInvalidRecordID) {
		t.Fatalf("expected ErrInvalidRecordID, got %v", err)
	}
	if s.Mode() != FormClosed {
		t.Fatalf("failed open must leave the session closed")
	}
}
