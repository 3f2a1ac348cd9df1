package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/getlims/limsgo/internal/models"
	"github.com/getlims/limsgo/internal/services/printer"
)

// LabelsRequest selects the items to print and optionally overrides the
// sheet layout
type LabelsRequest struct {
	ItemIDs []uint               `json:"item_ids"`
	Sheet   *printer.SheetConfig `json:"sheet"`
}

// generateLabels renders a PDF sheet of QR labels for the selected items.
// Items without an identifier fall back to their numeric ID.
func (r *Router) generateLabels(w http.ResponseWriter, req *http.Request) {
	var labelsReq LabelsRequest
	if err := json.NewDecoder(req.Body).Decode(&labelsReq); err != nil || len(labelsReq.ItemIDs) == 0 {
		respondError(w, http.StatusBadRequest, "item_ids is required")
		return
	}

	var items []models.Item
	if err := r.db.Find(&items, labelsReq.ItemIDs).Error; err != nil || len(items) == 0 {
		respondError(w, http.StatusNotFound, "No items found for the given ids")
		return
	}

	labels := make([]printer.Label, 0, len(items))
	for _, item := range items {
		identifier := strconv.FormatUint(uint64(item.ID), 10)
		if item.Identifier != nil && *item.Identifier != "" {
			identifier = *item.Identifier
		}
		labels = append(labels, printer.Label{Identifier: identifier, Name: item.Name})
	}

	sheet := printer.DefaultSheet
	if labelsReq.Sheet != nil {
		sheet = *labelsReq.Sheet
	}

	pdf, err := printer.GenerateLabelsPDF(labels, sheet)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate labels")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="labels.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
