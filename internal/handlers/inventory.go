package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/getlims/limsgo/internal/middleware"
	"github.com/getlims/limsgo/internal/models"
	"github.com/getlims/limsgo/internal/permissions"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// itemView decorates an item with its derived read-only fields
type itemView struct {
	models.Item
	TagSummary   string `json:"tag_summary"`
	LocationPath string `json:"location_path,omitempty"`
}

func newItemView(item models.Item) itemView {
	view := itemView{Item: item, TagSummary: item.TagSummary()}
	if path, err := item.LocationPath(); err == nil {
		view.LocationPath = path
	}
	return view
}

// ItemRequest is the write-side representation of an item. Related records
// are referenced by their natural keys: item type by name, measure by symbol.
type ItemRequest struct {
	Name            *string           `json:"name"`
	Identifier      *string           `json:"identifier"`
	Description     *string           `json:"description"`
	ItemType        *string           `json:"item_type"`
	Tags            *[]string         `json:"tags"`
	AmountAvailable *int              `json:"amount_available"`
	AmountMeasure   *string           `json:"amount_measure"`
	LocationID      *uint             `json:"location_id"`
	SetIDs          *[]uint           `json:"set_ids"`
	CreatedFrom     *[]uint           `json:"created_from"`
	Properties      []PropertyRequest `json:"properties"`
}

// PropertyRequest is one free-form property on item creation
type PropertyRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// listItems returns all inventory items
func (r *Router) listItems(w http.ResponseWriter, req *http.Request) {
	var items []models.Item
	query := r.db.Preload("ItemType").Preload("AmountMeasure").Preload("Location").Preload("Tags")
	if err := query.Find(&items).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch items")
		return
	}

	views := make([]itemView, 0, len(items))
	for _, item := range items {
		views = append(views, newItemView(item))
	}
	respondJSON(w, http.StatusOK, views)
}

// getItem returns a single item with its properties, sets, provenance and
// transfer history (newest first)
func (r *Router) getItem(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var item models.Item
	err := r.db.
		Preload("ItemType").Preload("AmountMeasure").Preload("Location").
		Preload("Tags").Preload("Sets").Preload("CreatedFrom").Preload("Properties").
		Preload("Transfers", models.TransfersNewestFirst).
		Preload("Transfers.AmountMeasure").
		First(&item, id).Error
	if err != nil {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}
	respondJSON(w, http.StatusOK, newItemView(item))
}

// createItem creates an inventory item; the in-inventory latch is derived in
// the model hook
func (r *Router) createItem(w http.ResponseWriter, req *http.Request) {
	var itemReq ItemRequest
	if err := json.NewDecoder(req.Body).Decode(&itemReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if itemReq.Name == nil || *itemReq.Name == "" {
		respondError(w, http.StatusBadRequest, "Item name is required")
		return
	}

	item := models.Item{
		Name:      *itemReq.Name,
		AddedByID: middleware.UserIDFromContext(req.Context()),
	}
	if err := r.applyItemRequest(&item, &itemReq); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if item.ItemTypeID == 0 {
		respondError(w, http.StatusBadRequest, "item_type is required")
		return
	}
	if item.AmountMeasureID == 0 {
		respondError(w, http.StatusBadRequest, "amount_measure is required")
		return
	}

	for _, prop := range itemReq.Properties {
		item.Properties = append(item.Properties, models.ItemProperty{Name: prop.Name, Value: prop.Value})
	}

	if err := r.db.Create(&item).Error; err != nil {
		respondError(w, http.StatusBadRequest, "Failed to create item (identifier might exist)")
		return
	}

	r.broadcast("item.created", item)
	respondJSON(w, http.StatusCreated, newItemView(item))
}

// updateItem applies a partial update. Read-only fields (audit columns,
// added_by) are enforced by the item policy table before anything is applied.
func (r *Router) updateItem(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var item models.Item
	if err := r.db.Preload("Tags").Preload("Sets").Preload("CreatedFrom").First(&item, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	scrubbed, err := permissions.ItemFields.ScrubUpdate(payload, toMap(item), middleware.IsStaff(req.Context()))
	if err != nil {
		respondPermissionError(w, err)
		return
	}

	var itemReq ItemRequest
	if err := remarshal(scrubbed, &itemReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := r.applyItemRequest(&item, &itemReq); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Save appends many2many rows but never removes them, so replaced
	// association lists need an explicit Replace
	if itemReq.Tags != nil {
		if err := r.db.Model(&item).Association("Tags").Replace(item.Tags); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to update tags")
			return
		}
	}
	if itemReq.SetIDs != nil {
		if err := r.db.Model(&item).Association("Sets").Replace(item.Sets); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to update sets")
			return
		}
	}
	if itemReq.CreatedFrom != nil {
		if err := r.db.Model(&item).Association("CreatedFrom").Replace(item.CreatedFrom); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to update provenance")
			return
		}
	}

	if err := r.db.Save(&item).Error; err != nil {
		respondError(w, http.StatusBadRequest, "Failed to update item")
		return
	}

	r.broadcast("item.updated", item)
	respondJSON(w, http.StatusOK, newItemView(item))
}

// deleteItem removes an item and its owned records
func (r *Router) deleteItem(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var item models.Item
	if err := r.db.First(&item, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}
	if err := r.db.Select("Properties", "Transfers", "Tags", "Sets", "CreatedFrom").Delete(&item).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete item")
		return
	}

	r.broadcast("item.deleted", map[string]uint{"id": item.ID})
	w.WriteHeader(http.StatusNoContent)
}

// applyItemRequest resolves natural-key references and copies request fields
// onto the item
func (r *Router) applyItemRequest(item *models.Item, req *ItemRequest) error {
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Identifier != nil {
		if *req.Identifier == "" {
			item.Identifier = nil
		} else {
			item.Identifier = req.Identifier
		}
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.AmountAvailable != nil {
		item.AmountAvailable = *req.AmountAvailable
	}
	if req.LocationID != nil {
		if *req.LocationID == 0 {
			item.LocationID = nil
			item.Location = nil
		} else {
			var loc models.Location
			if err := r.db.First(&loc, *req.LocationID).Error; err != nil {
				return errors.New("location not found")
			}
			item.LocationID = &loc.ID
			item.Location = &loc
		}
	}
	if req.ItemType != nil {
		var itemType models.ItemType
		if err := r.db.Where("name = ?", *req.ItemType).First(&itemType).Error; err != nil {
			return errors.New("item type not found: " + *req.ItemType)
		}
		item.ItemTypeID = itemType.ID
		item.ItemType = itemType
	}
	if req.AmountMeasure != nil {
		var measure models.AmountMeasure
		if err := r.db.Where("symbol = ?", *req.AmountMeasure).First(&measure).Error; err != nil {
			return errors.New("amount measure not found: " + *req.AmountMeasure)
		}
		item.AmountMeasureID = measure.ID
		item.AmountMeasure = measure
	}
	if req.Tags != nil {
		tags := make([]models.Tag, 0, len(*req.Tags))
		for _, name := range *req.Tags {
			var tag models.Tag
			if err := r.db.Where("name = ?", name).FirstOrCreate(&tag, models.Tag{Name: name}).Error; err != nil {
				return errors.New("failed to resolve tag: " + name)
			}
			tags = append(tags, tag)
		}
		item.Tags = tags
	}
	if req.SetIDs != nil {
		var sets []models.Set
		if len(*req.SetIDs) > 0 {
			if err := r.db.Find(&sets, *req.SetIDs).Error; err != nil || len(sets) != len(*req.SetIDs) {
				return errors.New("one or more sets not found")
			}
		}
		item.Sets = sets
	}
	if req.CreatedFrom != nil {
		var sources []models.Item
		if len(*req.CreatedFrom) > 0 {
			if err := r.db.Find(&sources, *req.CreatedFrom).Error; err != nil || len(sources) != len(*req.CreatedFrom) {
				return errors.New("one or more source items not found")
			}
		}
		item.CreatedFrom = sources
	}
	return nil
}

// TransferRequest creates a transfer against an item
type TransferRequest struct {
	AmountTaken   int    `json:"amount_taken"`
	AmountMeasure string `json:"amount_measure"`
	RunIdentifier string `json:"run_identifier"`
	Barcode       string `json:"barcode"`
	Coordinates   string `json:"coordinates"`
	IsAddition    bool   `json:"is_addition"`
}

// listTransfers returns an item's transfers, newest first
func (r *Router) listTransfers(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var transfers []models.ItemTransfer
	err := models.TransfersNewestFirst(r.db.DB).
		Preload("AmountMeasure").
		Where("item_id = ?", id).
		Find(&transfers).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch transfers")
		return
	}
	respondJSON(w, http.StatusOK, transfers)
}

// createTransfer logs a quantity movement against an item. Transfers are
// immutable facts; nothing here recomputes item balances.
func (r *Router) createTransfer(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var item models.Item
	if err := r.db.First(&item, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}

	var transferReq TransferRequest
	if err := json.NewDecoder(req.Body).Decode(&transferReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	var measure models.AmountMeasure
	if err := r.db.Where("symbol = ?", transferReq.AmountMeasure).First(&measure).Error; err != nil {
		respondError(w, http.StatusBadRequest, "Amount measure not found")
		return
	}

	runIdentifier := transferReq.RunIdentifier
	if runIdentifier == "" {
		runIdentifier = uuid.New().String()
	}

	transfer := models.ItemTransfer{
		ItemID:          item.ID,
		AmountTaken:     transferReq.AmountTaken,
		AmountMeasureID: measure.ID,
		RunIdentifier:   runIdentifier,
		Barcode:         transferReq.Barcode,
		Coordinates:     transferReq.Coordinates,
		IsAddition:      transferReq.IsAddition,
	}
	if err := r.db.Create(&transfer).Error; err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	r.broadcast("transfer.created", transfer)
	respondJSON(w, http.StatusCreated, transfer)
}

// completeTransfer flips the only mutable field on a transfer
func (r *Router) completeTransfer(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var transfer models.ItemTransfer
	if err := r.db.First(&transfer, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Transfer not found")
		return
	}

	err := r.db.Model(&transfer).Update("transfer_complete", true).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to complete transfer")
		return
	}

	r.broadcast("transfer.completed", transfer)
	respondJSON(w, http.StatusOK, transfer)
}

// createItemProperty attaches a free-form property to an item. Duplicate
// names are allowed.
func (r *Router) createItemProperty(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var item models.Item
	if err := r.db.First(&item, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}

	var propReq PropertyRequest
	if err := json.NewDecoder(req.Body).Decode(&propReq); err != nil || propReq.Name == "" {
		respondError(w, http.StatusBadRequest, "Property name is required")
		return
	}

	prop := models.ItemProperty{ItemID: item.ID, Name: propReq.Name, Value: propReq.Value}
	if err := r.db.Create(&prop).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create property")
		return
	}
	respondJSON(w, http.StatusCreated, prop)
}

// deleteItemProperty removes a property
func (r *Router) deleteItemProperty(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	result := r.db.Delete(&models.ItemProperty{}, id)
	if result.Error != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete property")
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, "Property not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// broadcast pushes an event to the websocket hub when one is attached
func (r *Router) broadcast(eventType string, payload interface{}) {
	if r.hub != nil {
		r.hub.BroadcastEvent(eventType, payload)
	}
}

// respondPermissionError maps policy failures onto HTTP statuses
func respondPermissionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, permissions.ErrStaffOnly):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, permissions.ErrReadOnly):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusBadRequest, err.Error())
	}
}

// remarshal converts a scrubbed payload map back into a typed request
func remarshal(payload map[string]interface{}, target interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}
