package diag_test

import (
	"testing"

	"jargon/internal/diag"
	"jargon/internal/source"
)

func TestBagCapEnforced(t *testing.T) {
	b := diag.NewBag(2)
	ok1 := b.Add(diag.NewError(diag.SynUnexpectedToken, source.Span{}, "first"))
	ok2 := b.Add(diag.NewError(diag.SynUnexpectedToken, source.Span{}, "second"))
	ok3 := b.Add(diag.NewError(diag.SynUnexpectedToken, source.Span{}, "third"))
	if !ok1 || !ok2 {
		t.Fatalf("expected the first two Adds to succeed, got %v, %v", ok1, ok2)
	}
	if ok3 {
		t.Error("expected the third Add to be dropped once the cap is reached")
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
	if b.Cap() != 2 {
		t.Errorf("Cap() = %d, want 2", b.Cap())
	}
}

func TestBagHasErrors(t *testing.T) {
	b := diag.NewBag(10)
	b.Add(diag.New(diag.SevWarning, diag.LexBadNumber, source.Span{}, "just a warning"))
	if b.HasErrors() {
		t.Error("HasErrors() = true, want false with only a warning present")
	}
	b.Add(diag.NewError(diag.SynExpectToken, source.Span{}, "an actual error"))
	if !b.HasErrors() {
		t.Error("HasErrors() = false, want true once an error is added")
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := diag.NewBag(10)
	reporter := diag.BagReporter{Bag: bag}
	b := diag.ReportError(reporter, diag.SynBadCaseArm, source.Span{}, "bad arm").
		WithNote(source.Span{}, "see this")
	b.Emit()
	b.Emit() // must be a no-op the second time
	if bag.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (Emit must be idempotent)", bag.Len())
	}
	got := bag.Items()[0]
	if got.Code != diag.SynBadCaseArm || got.Message != "bad arm" {
		t.Errorf("got = %+v, want Code=%v Message=%q", got, diag.SynBadCaseArm, "bad arm")
	}
	if len(got.Notes) != 1 || got.Notes[0].Msg != "see this" {
		t.Errorf("Notes = %+v, want one note %q", got.Notes, "see this")
	}
}

func TestNilReportBuilderIsSafe(t *testing.T) {
	var b *diag.ReportBuilder
	// WithNote and Emit on a nil builder must not panic — a nil builder is
	// the "diagnostics disabled past this point" state.
	b = b.WithNote(source.Span{}, "ignored")
	b.Emit()
}

func TestCodeString(t *testing.T) {
	if got := diag.SynUnexpectedToken.String(); got != "E2001" {
		t.Errorf("String() = %q, want %q", got, "E2001")
	}
	if got := diag.UnknownCode.String(); got != "E0000" {
		t.Errorf("String() = %q, want %q", got, "E0000")
	}
}

func TestBagReporterWithNilBagIsSafe(t *testing.T) {
	var r diag.BagReporter
	r.Report(diag.SynUnexpectedToken, diag.SevError, source.Span{}, "ignored", nil)
}
