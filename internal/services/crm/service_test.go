package crm

import (
	"testing"
	"time"
)

func TestRecordAccessors(t *testing.T) {
	rec := map[string]interface{}{
		"name":     "Acme Genomics",
		"subtotal": float64(1250.5),
		"count":    7,
	}

	if got := getString(rec, "name"); got != "Acme Genomics" {
		t.Errorf("getString = %q", got)
	}
	if got := getString(rec, "missing"); got != "" {
		t.Errorf("getString missing = %q, want empty", got)
	}
	if got := getFloat(rec, "subtotal"); got != 1250.5 {
		t.Errorf("getFloat = %v", got)
	}
	if got := getFloat(rec, "count"); got != 7 {
		t.Errorf("getFloat int = %v", got)
	}
	if got := getFloat(rec, "missing"); got != 0 {
		t.Errorf("getFloat missing = %v, want 0", got)
	}
}

func TestGetTime(t *testing.T) {
	rec := map[string]interface{}{
		"date_created": "2026-03-02 14:30:00",
		"bad":          "not a date",
	}

	got := getTime(rec, "date_created")
	want := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("getTime = %v, want %v", got, want)
	}
	if !getTime(rec, "bad").IsZero() {
		t.Error("unparseable timestamp should come back zero")
	}
	if !getTime(rec, "missing").IsZero() {
		t.Error("missing timestamp should come back zero")
	}
}

func TestRawJSON(t *testing.T) {
	rec := map[string]interface{}{"a": float64(1)}
	data := rawJSON(rec)
	if string(data) != `{"a":1}` {
		t.Errorf("rawJSON = %s", data)
	}
}
