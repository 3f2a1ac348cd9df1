package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/getlims/limsgo/internal/middleware"
	"github.com/getlims/limsgo/internal/models"
	"github.com/getlims/limsgo/internal/permissions"
	"github.com/gorilla/mux"
)

// ProductRequest is the write-side representation of a product. Status and
// product type are referenced by name, the optimised-for organism likewise.
// Design is write-only: accepted here, never echoed in responses.
type ProductRequest struct {
	Name         *string `json:"name"`
	ProjectID    *uint   `json:"project_id"`
	Status       *string `json:"status"`
	ProductType  *string `json:"product_type"`
	OptimisedFor *string `json:"optimised_for"`
	FlagIssue    *bool   `json:"flag_issue"`
	Design       *string `json:"design"`
}

func (r *Router) listProducts(w http.ResponseWriter, req *http.Request) {
	var products []models.Product
	query := r.db.Preload("Status").Preload("ProductType").Preload("OptimisedFor").Preload("CreatedBy")
	if projectID := req.URL.Query().Get("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if err := query.Order("product_identifier").Find(&products).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (r *Router) getProduct(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var product models.Product
	err := r.db.Preload("Status").Preload("ProductType").Preload("OptimisedFor").
		Preload("CreatedBy").Preload("LinkedInventory").Preload("LinkedInventory.ItemType").
		First(&product, id).Error
	if err != nil {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (r *Router) createProduct(w http.ResponseWriter, req *http.Request) {
	var prodReq ProductRequest
	if err := json.NewDecoder(req.Body).Decode(&prodReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if prodReq.Name == nil || *prodReq.Name == "" {
		respondError(w, http.StatusBadRequest, "Product name is required")
		return
	}
	if prodReq.ProjectID == nil {
		respondError(w, http.StatusBadRequest, "project_id is required")
		return
	}

	var project models.Project
	if err := r.db.First(&project, *prodReq.ProjectID).Error; err != nil {
		respondError(w, http.StatusBadRequest, "Project not found")
		return
	}

	userID := middleware.UserIDFromContext(req.Context())
	product := models.Product{
		Name:        *prodReq.Name,
		ProjectID:   project.ID,
		Project:     project,
		CreatedByID: &userID,
	}
	if err := r.applyProductRequest(&product, &prodReq); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if product.StatusID == 0 {
		respondError(w, http.StatusBadRequest, "status is required")
		return
	}
	if product.ProductTypeID == 0 {
		respondError(w, http.StatusBadRequest, "product_type is required")
		return
	}

	if err := r.db.Create(&product).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

// updateProduct applies a partial update gated by the product policy table:
// identifiers, audit columns and linked inventory stay read-only, the design
// stays write-only.
func (r *Router) updateProduct(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var product models.Product
	if err := r.db.Preload("Status").Preload("ProductType").First(&product, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	scrubbed, err := permissions.ProductFields.ScrubUpdate(payload, toMap(product), middleware.IsStaff(req.Context()))
	if err != nil {
		respondPermissionError(w, err)
		return
	}

	var prodReq ProductRequest
	if err := remarshal(scrubbed, &prodReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if prodReq.Name != nil {
		product.Name = *prodReq.Name
	}
	if err := r.applyProductRequest(&product, &prodReq); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.db.Save(&product).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (r *Router) deleteProduct(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var product models.Product
	if err := r.db.First(&product, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	if err := r.db.Model(&product).Association("LinkedInventory").Clear(); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to detach linked inventory")
		return
	}
	if err := r.db.Delete(&product).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) applyProductRequest(product *models.Product, req *ProductRequest) error {
	if req.FlagIssue != nil {
		product.FlagIssue = *req.FlagIssue
	}
	if req.Design != nil {
		product.Design = *req.Design
	}
	if req.Status != nil {
		var status models.ProductStatus
		if err := r.db.Where("name = ?", *req.Status).First(&status).Error; err != nil {
			return errors.New("product status not found: " + *req.Status)
		}
		product.StatusID = status.ID
		product.Status = status
	}
	if req.ProductType != nil {
		var productType models.ItemType
		if err := r.db.Where("name = ?", *req.ProductType).First(&productType).Error; err != nil {
			return errors.New("product type not found: " + *req.ProductType)
		}
		product.ProductTypeID = productType.ID
		product.ProductType = productType
	}
	if req.OptimisedFor != nil {
		if *req.OptimisedFor == "" {
			product.OptimisedForID = nil
			product.OptimisedFor = nil
		} else {
			var organism models.Organism
			if err := r.db.Where("name = ?", *req.OptimisedFor).First(&organism).Error; err != nil {
				return errors.New("organism not found: " + *req.OptimisedFor)
			}
			product.OptimisedForID = &organism.ID
			product.OptimisedFor = &organism
		}
	}
	return nil
}

// --- Linked inventory ---

// InventoryLinkRequest ties an inventory item to a product
type InventoryLinkRequest struct {
	ItemID uint `json:"item_id"`
}

func (r *Router) linkProductInventory(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var product models.Product
	if err := r.db.First(&product, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	var linkReq InventoryLinkRequest
	if err := json.NewDecoder(req.Body).Decode(&linkReq); err != nil || linkReq.ItemID == 0 {
		respondError(w, http.StatusBadRequest, "item_id is required")
		return
	}

	var item models.Item
	if err := r.db.First(&item, linkReq.ItemID).Error; err != nil {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}

	if err := r.db.Model(&product).Association("LinkedInventory").Append(&item); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to link item")
		return
	}

	r.broadcast("product.inventory_linked", map[string]uint{"product_id": product.ID, "item_id": item.ID})
	respondJSON(w, http.StatusOK, map[string]string{"status": "linked"})
}

func (r *Router) unlinkProductInventory(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	id, _ := strconv.Atoi(vars["id"])
	itemID, _ := strconv.Atoi(vars["itemId"])

	var product models.Product
	if err := r.db.First(&product, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	var item models.Item
	if err := r.db.First(&item, itemID).Error; err != nil {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}

	if err := r.db.Model(&product).Association("LinkedInventory").Delete(&item); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to unlink item")
		return
	}

	r.broadcast("product.inventory_unlinked", map[string]uint{"product_id": product.ID, "item_id": item.ID})
	w.WriteHeader(http.StatusNoContent)
}

// --- Product statuses ---

func (r *Router) listProductStatuses(w http.ResponseWriter, req *http.Request) {
	var statuses []models.ProductStatus
	if err := r.db.Order("name").Find(&statuses).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch product statuses")
		return
	}
	respondJSON(w, http.StatusOK, statuses)
}

func (r *Router) createProductStatus(w http.ResponseWriter, req *http.Request) {
	var status models.ProductStatus
	if err := json.NewDecoder(req.Body).Decode(&status); err != nil || status.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}
	status.ID = 0
	if err := r.db.Create(&status).Error; err != nil {
		respondError(w, http.StatusBadRequest, "Failed to create product status (name might exist)")
		return
	}
	respondJSON(w, http.StatusCreated, status)
}

func (r *Router) deleteProductStatus(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var inUse int64
	r.db.Model(&models.Product{}).Where("status_id = ?", id).Count(&inUse)
	if inUse > 0 {
		respondError(w, http.StatusConflict, "Status is in use by products")
		return
	}

	result := r.db.Delete(&models.ProductStatus{}, id)
	if result.Error != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete product status")
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, "Product status not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Comments ---

// CommentRequest adds a note to a product
type CommentRequest struct {
	Text string `json:"text"`
}

func (r *Router) listComments(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var comments []models.Comment
	err := r.db.Preload("User").Where("product_id = ?", id).
		Order("date_created").Find(&comments).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch comments")
		return
	}
	respondJSON(w, http.StatusOK, comments)
}

func (r *Router) createComment(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var product models.Product
	if err := r.db.First(&product, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	var commentReq CommentRequest
	if err := json.NewDecoder(req.Body).Decode(&commentReq); err != nil || commentReq.Text == "" {
		respondError(w, http.StatusBadRequest, "Text is required")
		return
	}

	comment := models.Comment{
		ProductID: product.ID,
		UserID:    middleware.UserIDFromContext(req.Context()),
		Text:      commentReq.Text,
	}
	if err := r.db.Create(&comment).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create comment")
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}
