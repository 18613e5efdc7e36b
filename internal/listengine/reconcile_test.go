package listengine

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReconcileAfterCreate_Placement(t *testing.T) {
	r := assets(3)
	x := Record{"id": int64(99), "hostname": "NEW"}

	pre := ReconcileAfterCreate(r, x, Prepend)
	if diff := cmp.Diff([]int64{99, 1, 2, 3}, ids(pre)); diff != "" {
		t.Errorf("prepend (-want +got):\n%s", diff)
	}
	app := ReconcileAfterCreate(r, x, Append)
	if diff := cmp.Diff([]int64{1, 2, 3, 99}, ids(app)); diff != "" {
		t.Errorf("append (-want +got):\n%s", diff)
	}
	if len(r) != 3 {
		t.Errorf("input length changed to %d", len(r))
	}
}

func TestReconcileAfterCreate_ThenDeleteConverges(t *testing.T) {
	for n := 0; n < 6; n++ {
		r := assets(n)
		x := Record{"id": int64(1000), "hostname": "X"}
		created := ReconcileAfterCreate(r, x, Prepend)
		if len(created) != len(r)+1 {
			t.Fatalf("n=%d: created len = %d, want %d", n, len(created), len(r)+1)
		}
		back := ReconcileAfterDelete(created, 1000)
		if diff := cmp.Diff(r, back); diff != "" {
			t.Errorf("n=%d: create+delete (-want +got):\n%s", n, diff)
		}
	}
}

func TestReconcileAfterCreate_ExistingIDReplaces(t *testing.T) {
	r := assets(3)
	dup := Record{"id": int64(2), "hostname": "RENAMED"}
	got := ReconcileAfterCreate(r, dup, Prepend)
	if diff := cmp.Diff([]int64{1, 2, 3}, ids(got)); diff != "" {
		t.Fatalf("ids (-want +got):\n%s", diff)
	}
	if got[1].Field("hostname") != "RENAMED" {
		t.Errorf("hostname = %q, want RENAMED", got[1].Field("hostname"))
	}
}

func TestReconcileAfterUpdate(t *testing.T) {
	r := assets(4)
	upd := Record{"id": int64(3), "hostname": "PC-3-bis", "status": "inactive"}
	got := ReconcileAfterUpdate(r, 3, upd)
	if diff := cmp.Diff([]int64{1, 2, 3, 4}, ids(got)); diff != "" {
		t.Fatalf("order changed (-want +got):\n%s", diff)
	}
	if got[2].Field("hostname") != "PC-3-bis" {
		t.Errorf("hostname = %q", got[2].Field("hostname"))
	}
	if r[2].Field("hostname") != "PC-3" {
		t.Error("input collection was modified")
	}
}

func TestReconcileAfterUpdate_UnknownIDIsNoop(t *testing.T) {
	r := assets(2)
	got := ReconcileAfterUpdate(r, 42, Record{"id": int64(42)})
	if diff := cmp.Diff(r, got); diff != "" {
		t.Errorf("unexpected change (-want +got):\n%s", diff)
	}
}

func TestReconcileAfterDelete_UnknownIDIsNoop(t *testing.T) {
	r := assets(2)
	got := ReconcileAfterDelete(r, 42)
	if diff := cmp.Diff(r, got); diff != "" {
		t.Errorf("unexpected change (-want +got):\n%s", diff)
	}
}

func TestNormalize(t *testing.T) {
	var decoded any
	if err := json.Unmarshal([]byte(`[{"id":1,"hostname":"a"},7,{"id":2}]`), &decoded); err != nil {
		t.Fatal(err)
	}
	got := Normalize(decoded)
	if diff := cmp.Diff([]int64{1, 2}, ids(got)); diff != "" {
		t.Errorf("normalized ids (-want +got):\n%s", diff)
	}

	for _, v := range []any{nil, "oops", map[string]any{"id": 1}, 3.5} {
		if got := Normalize(v); got == nil || len(got) != 0 {
			t.Errorf("Normalize(%v) = %v, want empty", v, got)
		}
	}
}

func TestFacetCache_RecomputesOnlyAfterInvalidate(t *testing.T) {
	var c FacetCache
	r := []Record{{"id": 1, "model": "HP"}, {"id": 2, "model": "Dell"}}

	first := c.Facet(r, "model")
	if diff := cmp.Diff([]string{"Dell", "HP"}, first); diff != "" {
		t.Fatalf("facet (-want +got):\n%s", diff)
	}

	r = append(r, Record{"id": 3, "model": "Lenovo"})
	if got := c.Facet(r, "model"); len(got) != 2 {
		t.Errorf("facet recomputed without invalidate: %v", got)
	}

	c.Invalidate()
	if diff := cmp.Diff([]string{"Dell", "HP", "Lenovo"}, c.Facet(r, "model")); diff != "" {
		t.Errorf("facet after invalidate (-want +got):\n%s", diff)
	}
}
