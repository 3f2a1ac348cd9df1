package printer

import (
	"bytes"
	"testing"
)

func TestGenerateLabelsPDF(t *testing.T) {
	labels := []Label{
		{Identifier: "ENZ-0001", Name: "Taq Polymerase"},
		{Identifier: "CON-0001", Name: "pUC19 Backbone"},
	}

	pdf, err := GenerateLabelsPDF(labels, DefaultSheet)
	if err != nil {
		t.Fatalf("GenerateLabelsPDF: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("output does not look like a PDF")
	}
}

func TestGenerateLabelsPDFZeroConfigFallsBack(t *testing.T) {
	labels := []Label{{Identifier: "X-1", Name: "Test"}}

	// Cols/Rows of zero fall back to the default grid
	pdf, err := GenerateLabelsPDF(labels, SheetConfig{})
	if err != nil {
		t.Fatalf("GenerateLabelsPDF: %v", err)
	}
	if len(pdf) == 0 {
		t.Error("empty PDF")
	}
}

func TestGenerateLabelsPDFMultiPage(t *testing.T) {
	var labels []Label
	for i := 0; i < DefaultSheet.Cols*DefaultSheet.Rows+1; i++ {
		labels = append(labels, Label{Identifier: "ID", Name: "Name"})
	}
	pdf, err := GenerateLabelsPDF(labels, DefaultSheet)
	if err != nil {
		t.Fatalf("GenerateLabelsPDF: %v", err)
	}
	if len(pdf) == 0 {
		t.Error("empty PDF")
	}
}
