package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/getlims/limsgo/internal/models"
	"github.com/gorilla/mux"
)

// treeNodeView is the serialized form of a taxonomy or storage node, with the
// depth-prefixed display name and a flag for tree UIs
type treeNodeView struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Code        *string `json:"code,omitempty"`
	ParentID    *uint   `json:"parent_id,omitempty"`
	Path        string  `json:"path"`
	Level       int     `json:"level"`
	DisplayName string  `json:"display_name"`
	HasChildren bool    `json:"has_children"`
}

// TreeNodeRequest creates or reparents a tree node. ParentID is kept raw so
// an absent key (leave parent unchanged) can be told apart from an explicit
// null (move to root).
type TreeNodeRequest struct {
	Name     string          `json:"name"`
	Code     *string         `json:"code"`
	ParentID json.RawMessage `json:"parent_id"`
}

// parent decodes the parent_id field. present is false when the key was
// omitted; a JSON null comes back present with a nil id.
func (r *TreeNodeRequest) parent() (present bool, id *uint, err error) {
	if len(r.ParentID) == 0 {
		return false, nil, nil
	}
	if string(r.ParentID) == "null" {
		return true, nil, nil
	}
	var v uint
	if err := json.Unmarshal(r.ParentID, &v); err != nil {
		return true, nil, errors.New("parent_id must be a number or null")
	}
	return true, &v, nil
}

// --- Item types ---

// listItemTypes returns the full taxonomy in path order, so parents always
// precede their children
func (r *Router) listItemTypes(w http.ResponseWriter, req *http.Request) {
	var types []models.ItemType
	if err := r.db.Order("path").Find(&types).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch item types")
		return
	}

	views := make([]treeNodeView, 0, len(types))
	for i := range types {
		views = append(views, r.itemTypeView(&types[i]))
	}
	respondJSON(w, http.StatusOK, views)
}

func (r *Router) getItemType(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var itemType models.ItemType
	if err := r.db.Preload("Children").First(&itemType, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Item type not found")
		return
	}
	respondJSON(w, http.StatusOK, r.itemTypeView(&itemType))
}

func (r *Router) createItemType(w http.ResponseWriter, req *http.Request) {
	var nodeReq TreeNodeRequest
	if err := json.NewDecoder(req.Body).Decode(&nodeReq); err != nil || nodeReq.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}

	_, parentID, err := nodeReq.parent()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	itemType := models.ItemType{Name: nodeReq.Name, ParentID: parentID}
	if err := r.db.Create(&itemType).Error; err != nil {
		respondTreeError(w, err, "Failed to create item type (name might exist)")
		return
	}
	respondJSON(w, http.StatusCreated, r.itemTypeView(&itemType))
}

// updateItemType renames or reparents a node. Paths of all descendants are
// rewritten inside the same save.
func (r *Router) updateItemType(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var itemType models.ItemType
	if err := r.db.First(&itemType, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Item type not found")
		return
	}

	var nodeReq TreeNodeRequest
	if err := json.NewDecoder(req.Body).Decode(&nodeReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if nodeReq.Name != "" {
		itemType.Name = nodeReq.Name
	}
	if present, parentID, err := nodeReq.parent(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	} else if present {
		itemType.ParentID = parentID
	}

	if err := r.db.Save(&itemType).Error; err != nil {
		respondTreeError(w, err, "Failed to update item type")
		return
	}
	respondJSON(w, http.StatusOK, r.itemTypeView(&itemType))
}

// deleteItemType removes a leaf node; nodes with descendants are refused
func (r *Router) deleteItemType(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var itemType models.ItemType
	if err := r.db.First(&itemType, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Item type not found")
		return
	}

	hasChildren, err := itemType.HasChildren(r.db.DB)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to check descendants")
		return
	}
	if hasChildren {
		respondError(w, http.StatusConflict, "Item type still has descendants")
		return
	}

	var inUse int64
	r.db.Model(&models.Item{}).Where("item_type_id = ?", itemType.ID).Count(&inUse)
	if inUse > 0 {
		respondError(w, http.StatusConflict, "Item type is in use by inventory items")
		return
	}

	if err := r.db.Delete(&itemType).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete item type")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) itemTypeView(t *models.ItemType) treeNodeView {
	hasChildren, _ := t.HasChildren(r.db.DB)
	return treeNodeView{
		ID:          t.ID,
		Name:        t.Name,
		ParentID:    t.ParentID,
		Path:        t.Path,
		Level:       t.Level,
		DisplayName: t.DisplayName(),
		HasChildren: hasChildren,
	}
}

// --- Locations ---

func (r *Router) listLocations(w http.ResponseWriter, req *http.Request) {
	var locations []models.Location
	if err := r.db.Order("path").Find(&locations).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch locations")
		return
	}

	views := make([]treeNodeView, 0, len(locations))
	for i := range locations {
		views = append(views, r.locationView(&locations[i]))
	}
	respondJSON(w, http.StatusOK, views)
}

func (r *Router) getLocation(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var location models.Location
	if err := r.db.Preload("Children").First(&location, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Location not found")
		return
	}
	respondJSON(w, http.StatusOK, r.locationView(&location))
}

func (r *Router) createLocation(w http.ResponseWriter, req *http.Request) {
	var nodeReq TreeNodeRequest
	if err := json.NewDecoder(req.Body).Decode(&nodeReq); err != nil || nodeReq.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}

	_, parentID, err := nodeReq.parent()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	location := models.Location{Name: nodeReq.Name, Code: nodeReq.Code, ParentID: parentID}
	if err := r.db.Create(&location).Error; err != nil {
		respondTreeError(w, err, "Failed to create location (code might exist)")
		return
	}
	respondJSON(w, http.StatusCreated, r.locationView(&location))
}

func (r *Router) updateLocation(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var location models.Location
	if err := r.db.First(&location, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Location not found")
		return
	}

	var nodeReq TreeNodeRequest
	if err := json.NewDecoder(req.Body).Decode(&nodeReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if nodeReq.Name != "" {
		location.Name = nodeReq.Name
	}
	if nodeReq.Code != nil {
		location.Code = nodeReq.Code
	}
	if present, parentID, err := nodeReq.parent(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	} else if present {
		location.ParentID = parentID
	}

	if err := r.db.Save(&location).Error; err != nil {
		respondTreeError(w, err, "Failed to update location")
		return
	}
	respondJSON(w, http.StatusOK, r.locationView(&location))
}

func (r *Router) deleteLocation(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var location models.Location
	if err := r.db.First(&location, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Location not found")
		return
	}

	hasChildren, err := location.HasChildren(r.db.DB)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to check descendants")
		return
	}
	if hasChildren {
		respondError(w, http.StatusConflict, "Location still has descendants")
		return
	}

	var inUse int64
	r.db.Model(&models.Item{}).Where("location_id = ?", location.ID).Count(&inUse)
	if inUse > 0 {
		respondError(w, http.StatusConflict, "Location still holds inventory items")
		return
	}

	if err := r.db.Delete(&location).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete location")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) locationView(l *models.Location) treeNodeView {
	hasChildren, _ := l.HasChildren(r.db.DB)
	return treeNodeView{
		ID:          l.ID,
		Name:        l.Name,
		Code:        l.Code,
		ParentID:    l.ParentID,
		Path:        l.Path,
		Level:       l.Level,
		DisplayName: l.DisplayName(),
		HasChildren: hasChildren,
	}
}

// respondTreeError distinguishes cyclic parent assignments from other
// persistence failures
func respondTreeError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, models.ErrCyclicParent) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondError(w, http.StatusBadRequest, fallback)
}
