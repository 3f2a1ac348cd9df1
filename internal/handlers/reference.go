package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/getlims/limsgo/internal/models"
	"github.com/gorilla/mux"
)

// --- Amount measures ---

func (r *Router) listMeasures(w http.ResponseWriter, req *http.Request) {
	var measures []models.AmountMeasure
	if err := r.db.Order("name").Find(&measures).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch measures")
		return
	}
	respondJSON(w, http.StatusOK, measures)
}

func (r *Router) createMeasure(w http.ResponseWriter, req *http.Request) {
	var measure models.AmountMeasure
	if err := json.NewDecoder(req.Body).Decode(&measure); err != nil || measure.Name == "" || measure.Symbol == "" {
		respondError(w, http.StatusBadRequest, "Name and symbol are required")
		return
	}
	measure.ID = 0
	if err := r.db.Create(&measure).Error; err != nil {
		respondError(w, http.StatusBadRequest, "Failed to create measure (name or symbol might exist)")
		return
	}
	respondJSON(w, http.StatusCreated, measure)
}

func (r *Router) deleteMeasure(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var inUse int64
	r.db.Model(&models.Item{}).Where("amount_measure_id = ?", id).Count(&inUse)
	if inUse > 0 {
		respondError(w, http.StatusConflict, "Measure is in use by inventory items")
		return
	}

	result := r.db.Delete(&models.AmountMeasure{}, id)
	if result.Error != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete measure")
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, "Measure not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Tags ---

func (r *Router) listTags(w http.ResponseWriter, req *http.Request) {
	var tags []models.Tag
	if err := r.db.Order("name").Find(&tags).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch tags")
		return
	}
	respondJSON(w, http.StatusOK, tags)
}

func (r *Router) createTag(w http.ResponseWriter, req *http.Request) {
	var tag models.Tag
	if err := json.NewDecoder(req.Body).Decode(&tag); err != nil || tag.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}
	tag.ID = 0
	if err := r.db.Where("name = ?", tag.Name).FirstOrCreate(&tag, models.Tag{Name: tag.Name}).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create tag")
		return
	}
	respondJSON(w, http.StatusCreated, tag)
}

func (r *Router) deleteTag(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var tag models.Tag
	if err := r.db.First(&tag, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Tag not found")
		return
	}
	if err := r.db.Exec("DELETE FROM item_tags WHERE tag_id = ?", tag.ID).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to detach tag")
		return
	}
	if err := r.db.Delete(&tag).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete tag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Sets ---

// setView decorates a set with its member count
type setView struct {
	models.Set
	NumberOfItems int64 `json:"number_of_items"`
}

func (r *Router) newSetView(set models.Set) setView {
	count, _ := set.NumberOfItems(r.db.DB)
	return setView{Set: set, NumberOfItems: count}
}

func (r *Router) listSets(w http.ResponseWriter, req *http.Request) {
	var sets []models.Set
	if err := r.db.Order("name").Find(&sets).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch sets")
		return
	}

	views := make([]setView, 0, len(sets))
	for _, set := range sets {
		views = append(views, r.newSetView(set))
	}
	respondJSON(w, http.StatusOK, views)
}

func (r *Router) getSet(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var set models.Set
	if err := r.db.Preload("Items").Preload("Items.ItemType").First(&set, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Set not found")
		return
	}
	respondJSON(w, http.StatusOK, r.newSetView(set))
}

func (r *Router) createSet(w http.ResponseWriter, req *http.Request) {
	var set models.Set
	if err := json.NewDecoder(req.Body).Decode(&set); err != nil || set.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}
	set.ID = 0
	if err := r.db.Create(&set).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create set")
		return
	}
	respondJSON(w, http.StatusCreated, r.newSetView(set))
}

func (r *Router) deleteSet(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var set models.Set
	if err := r.db.First(&set, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Set not found")
		return
	}
	if err := r.db.Model(&set).Association("Items").Clear(); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to detach set members")
		return
	}
	if err := r.db.Delete(&set).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete set")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
