package permissions

import (
	"errors"
	"testing"
)

func TestScrubUpdatePassesWritableFields(t *testing.T) {
	payload := map[string]interface{}{
		"name":        "New name",
		"description": "Updated",
	}
	out, err := ProjectFields.ScrubUpdate(payload, map[string]interface{}{}, false)
	if err != nil {
		t.Fatalf("ScrubUpdate: %v", err)
	}
	if out["name"] != "New name" || out["description"] != "Updated" {
		t.Errorf("writable fields were altered: %v", out)
	}
}

func TestScrubUpdateRejectsChangedReadOnly(t *testing.T) {
	payload := map[string]interface{}{
		"name":       "New name",
		"identifier": float64(999),
	}
	current := map[string]interface{}{
		"identifier": float64(101),
	}
	_, err := ProjectFields.ScrubUpdate(payload, current, true)
	if !errors.Is(err, ErrReadOnly) {
		t.Errorf("changed read-only field: err = %v, want ErrReadOnly", err)
	}
}

func TestScrubUpdateToleratesUnchangedReadOnly(t *testing.T) {
	// A round-tripped record echoes read-only fields back unchanged; that
	// must not fail the whole update
	payload := map[string]interface{}{
		"name":       "New name",
		"identifier": float64(101),
	}
	current := map[string]interface{}{
		"identifier": float64(101),
	}
	out, err := ProjectFields.ScrubUpdate(payload, current, false)
	if err != nil {
		t.Fatalf("ScrubUpdate: %v", err)
	}
	if _, ok := out["identifier"]; ok {
		t.Error("unchanged read-only field should be dropped, not passed through")
	}
	if out["name"] != "New name" {
		t.Error("writable field lost")
	}
}

func TestScrubUpdateStaffOnly(t *testing.T) {
	payload := map[string]interface{}{
		"primary_lab_contact": "alice",
	}

	_, err := ProjectFields.ScrubUpdate(payload, map[string]interface{}{}, false)
	if !errors.Is(err, ErrStaffOnly) {
		t.Errorf("non-staff write to staff-only field: err = %v, want ErrStaffOnly", err)
	}

	out, err := ProjectFields.ScrubUpdate(payload, map[string]interface{}{}, true)
	if err != nil {
		t.Fatalf("staff write rejected: %v", err)
	}
	if out["primary_lab_contact"] != "alice" {
		t.Error("staff-only field lost for staff caller")
	}
}

func TestScrubUpdateWriteOnlyAccepted(t *testing.T) {
	payload := map[string]interface{}{
		"design": "{\"parts\": []}",
	}
	out, err := ProductFields.ScrubUpdate(payload, map[string]interface{}{}, false)
	if err != nil {
		t.Fatalf("ScrubUpdate: %v", err)
	}
	if out["design"] != payload["design"] {
		t.Error("write-only field should be accepted on write")
	}
}

func TestJSONEqualCrossTypes(t *testing.T) {
	if !jsonEqual(float64(5), float64(5)) {
		t.Error("equal floats not equal")
	}
	if !jsonEqual(nil, nil) {
		t.Error("nils not equal")
	}
	if jsonEqual("a", "b") {
		t.Error("different strings reported equal")
	}
}
