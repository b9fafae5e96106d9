package model

import (
	"errors"
	"testing"
)

func TestIntervalTable(t *testing.T) {
	t.Parallel()

	t.Run("append and read rows", func(t *testing.T) {
		t.Parallel()
		tbl := NewIntervalTable("assay")
		col, err := tbl.AddColumn("au", ColumnTypeReal)
		if err != nil {
			t.Fatal(err)
		}
		if err := tbl.AppendRow("DH1", 0, 2); err != nil {
			t.Fatal(err)
		}
		col.Set(0, Real(1.5))
		if err := tbl.AppendRow("DH2", 2, 5); err != nil {
			t.Fatal(err)
		}

		if tbl.Len() != 2 {
			t.Fatalf("expected 2 rows, got %d", tbl.Len())
		}
		if col.Len() != 2 {
			t.Fatalf("expected column padded to 2 values, got %d", col.Len())
		}
		if !col.Values[1].IsNull() {
			t.Error("expected appended row to pad column with null")
		}
	})

	t.Run("inverted interval rejected", func(t *testing.T) {
		t.Parallel()
		tbl := NewIntervalTable("assay")
		err := tbl.AppendRow("DH1", 5, 2)
		if !errors.Is(err, ErrInvalidInterval) {
			t.Errorf("expected ErrInvalidInterval, got %v", err)
		}
	})

	t.Run("duplicate column rejected", func(t *testing.T) {
		t.Parallel()
		tbl := NewIntervalTable("assay")
		if _, err := tbl.AddColumn("au", ColumnTypeReal); err != nil {
			t.Fatal(err)
		}
		if _, err := tbl.AddColumn("au", ColumnTypeText); err == nil {
			t.Error("expected error for duplicate column")
		}
	})

	t.Run("late column pads existing rows", func(t *testing.T) {
		t.Parallel()
		tbl := NewIntervalTable("assay")
		if err := tbl.AppendRow("DH1", 0, 2); err != nil {
			t.Fatal(err)
		}
		col, err := tbl.AddColumn("au", ColumnTypeReal)
		if err != nil {
			t.Fatal(err)
		}
		if col.Len() != 1 || !col.Values[0].IsNull() {
			t.Error("expected late column padded with nulls")
		}
	})

	t.Run("filter hole", func(t *testing.T) {
		t.Parallel()
		tbl := NewIntervalTable("assay")
		col, _ := tbl.AddColumn("lith", ColumnTypeText)
		_ = tbl.AppendRow("DH1", 0, 2)
		col.Set(0, Text("granite"))
		_ = tbl.AppendRow("DH2", 0, 3)
		col.Set(1, Text("basalt"))
		_ = tbl.AppendRow("DH1", 2, 5)
		col.Set(2, Text("schist"))

		ht := tbl.FilterHole("DH1")
		if ht.Len() != 2 {
			t.Fatalf("expected 2 rows for DH1, got %d", ht.Len())
		}
		got := ht.Column("lith").Values
		if got[0] != Text("granite") || got[1] != Text("schist") {
			t.Errorf("unexpected filtered values: %v", got)
		}

		if empty := tbl.FilterHole("DH9"); empty.Len() != 0 {
			t.Errorf("expected empty table for unknown hole, got %d rows", empty.Len())
		}
	})

	t.Run("holes are distinct and sorted", func(t *testing.T) {
		t.Parallel()
		tbl := NewIntervalTable("assay")
		_ = tbl.AppendRow("DH2", 0, 1)
		_ = tbl.AppendRow("DH1", 0, 1)
		_ = tbl.AppendRow("DH2", 1, 2)

		holes := tbl.Holes()
		if len(holes) != 2 || holes[0] != "DH1" || holes[1] != "DH2" {
			t.Errorf("unexpected holes: %v", holes)
		}
	})

	t.Run("depth range", func(t *testing.T) {
		t.Parallel()
		tbl := NewIntervalTable("assay")
		if _, _, ok := tbl.DepthRange(); ok {
			t.Error("expected no range on empty table")
		}
		_ = tbl.AppendRow("DH1", 2, 5)
		_ = tbl.AppendRow("DH1", 0, 3)
		minFrom, maxTo, ok := tbl.DepthRange()
		if !ok || minFrom != 0 || maxTo != 5 {
			t.Errorf("expected [0, 5], got [%g, %g] ok=%v", minFrom, maxTo, ok)
		}
	})

	t.Run("clone is independent", func(t *testing.T) {
		t.Parallel()
		tbl := NewIntervalTable("assay")
		col, _ := tbl.AddColumn("au", ColumnTypeReal)
		_ = tbl.AppendRow("DH1", 0, 2)
		col.Set(0, Real(1.5))

		cp := tbl.Clone()
		cp.Column("au").Set(0, Real(9.9))
		if col.Values[0] != Real(1.5) {
			t.Error("clone mutation leaked into the original")
		}
	})
}

func TestPointTable(t *testing.T) {
	t.Parallel()

	t.Run("append and max depth", func(t *testing.T) {
		t.Parallel()
		tbl := NewPointTable("structure")
		col, err := tbl.AddColumn("alpha", ColumnTypeReal)
		if err != nil {
			t.Fatal(err)
		}
		tbl.AppendRow("DH1", 12.5)
		col.Set(0, Real(45))
		tbl.AppendRow("DH1", 3)

		maxd, ok := tbl.MaxDepth()
		if !ok || maxd != 12.5 {
			t.Errorf("expected max depth 12.5, got %g ok=%v", maxd, ok)
		}
	})

	t.Run("filter hole", func(t *testing.T) {
		t.Parallel()
		tbl := NewPointTable("structure")
		tbl.AppendRow("DH1", 1)
		tbl.AppendRow("DH2", 2)

		ht := tbl.FilterHole("DH2")
		if ht.Len() != 1 || ht.Depths()[0] != 2 {
			t.Errorf("unexpected filtered table: %v", ht.Depths())
		}
	})
}

func TestColumnCoercion(t *testing.T) {
	t.Parallel()

	c := NewColumn("au", ColumnTypeReal)
	c.Append(Text("granite"))
	if !c.Values[0].IsNull() {
		t.Error("expected wrong-typed append to coerce to null")
	}

	c.Append(Real(2.5))
	fs := c.Floats()
	if fs[1] != 2.5 {
		t.Errorf("expected 2.5, got %g", fs[1])
	}

	c.Set(1, Text("basalt"))
	if !c.Values[1].IsNull() {
		t.Error("expected wrong-typed set to coerce to null")
	}
}
