package bridge

import (
	"os"
	"testing"
)

func TestValidateDefaultsOmittedRowsCols(t *testing.T) {
	o := &Options{Shell: []string{"sh"}}
	if err := o.Validate(); err != nil {
		t.Fatal(err)
	}
	if o.Rows != DefaultRows || o.Cols != DefaultCols {
		t.Fatalf("Rows/Cols = %d/%d, want defaults %d/%d", o.Rows, o.Cols, DefaultRows, DefaultCols)
	}
}

func TestValidatePreservesExplicitZeroAsAuto(t *testing.T) {
	o := &Options{Shell: []string{"sh"}, Rows: 0, Cols: 0, RowsSet: true, ColsSet: true}
	if err := o.Validate(); err != nil {
		t.Fatal(err)
	}
	if o.Rows != 0 || o.Cols != 0 {
		t.Fatalf("Rows/Cols = %d/%d, want 0/0 (auto) preserved", o.Rows, o.Cols)
	}
}

func TestValidateMissingShell(t *testing.T) {
	o := &Options{}
	if err := o.Validate(); err == nil {
		t.Fatal("expected error for missing shell")
	}
}

func TestValidateManagedRequiresInput(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	o := &Options{Shell: []string{"sh"}, Out: w}
	if err := o.Validate(); err == nil {
		t.Fatal("expected error for managed mode with no --ins/--inr")
	}
}
