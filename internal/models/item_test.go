package models

import (
	"errors"
	"testing"
)

func TestInInventoryLatch(t *testing.T) {
	item := Item{AmountAvailable: 0}
	if err := item.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave: %v", err)
	}
	if item.InInventory {
		t.Error("item with zero amount should not be latched in inventory")
	}

	item.AmountAvailable = 5
	if err := item.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave: %v", err)
	}
	if !item.InInventory {
		t.Error("positive amount should latch in_inventory")
	}

	// Depleting the amount must not clear the latch
	item.AmountAvailable = 0
	if err := item.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave: %v", err)
	}
	if !item.InInventory {
		t.Error("latch must survive the amount returning to zero")
	}
}

func TestTagSummary(t *testing.T) {
	item := Item{}
	if got := item.TagSummary(); got != "" {
		t.Errorf("TagSummary() with no tags = %q, want empty", got)
	}

	item.Tags = []Tag{{Name: "pcr"}, {Name: "cloning"}, {Name: "validated"}}
	want := "pcr, cloning, validated"
	if got := item.TagSummary(); got != want {
		t.Errorf("TagSummary() = %q, want %q", got, want)
	}
}

func TestLocationPath(t *testing.T) {
	item := Item{}
	if _, err := item.LocationPath(); !errors.Is(err, ErrNoLocation) {
		t.Errorf("LocationPath() without location: err = %v, want ErrNoLocation", err)
	}

	locID := uint(3)
	item.LocationID = &locID
	item.Location = &Location{Name: "Shelf A", Path: "Main Lab/Freezer 2/Shelf A", Level: 2}

	path, err := item.LocationPath()
	if err != nil {
		t.Fatalf("LocationPath: %v", err)
	}
	if want := "Main Lab > Freezer 2 > Shelf A"; path != want {
		t.Errorf("LocationPath() = %q, want %q", path, want)
	}
}

func TestTransferCoordinatesValidation(t *testing.T) {
	transfer := ItemTransfer{Coordinates: "A1"}
	if err := transfer.BeforeCreate(nil); err != nil {
		t.Errorf("valid coordinates rejected: %v", err)
	}

	transfer.Coordinates = ""
	if err := transfer.BeforeCreate(nil); err != nil {
		t.Errorf("empty coordinates rejected: %v", err)
	}

	// Two characters, more than two bytes
	transfer.Coordinates = "Ä1"
	if err := transfer.BeforeCreate(nil); err != nil {
		t.Errorf("two-character coordinates rejected: %v", err)
	}

	transfer.Coordinates = "A12"
	if err := transfer.BeforeCreate(nil); err == nil {
		t.Error("coordinates longer than 2 characters should be rejected")
	}
}

func TestAmountMeasureString(t *testing.T) {
	m := AmountMeasure{Name: "Microlitre", Symbol: "uL"}
	if got := m.String(); got != "Microlitre (uL)" {
		t.Errorf("String() = %q", got)
	}
}
