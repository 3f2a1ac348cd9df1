package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/getlims/limsgo/internal/middleware"
	"github.com/getlims/limsgo/internal/models"
	"github.com/getlims/limsgo/internal/permissions"
	"github.com/gorilla/mux"
)

// ProjectRequest is the write-side representation of a project. The primary
// lab contact is referenced by username; identifiers are system-assigned and
// never accepted here.
type ProjectRequest struct {
	Name                 *string `json:"name"`
	Description          *string `json:"description"`
	Archive              *bool   `json:"archive"`
	PrimaryLabContact    *string `json:"primary_lab_contact"`
	CRMProjectIdentifier *string `json:"crm_project_identifier"`
	OrderID              *uint   `json:"order_id"`
}

func (r *Router) listProjects(w http.ResponseWriter, req *http.Request) {
	var projects []models.Project
	query := r.db.Preload("PrimaryLabContact").Preload("CRMProject").Order("identifier")
	if req.URL.Query().Get("archive") == "" {
		query = query.Where("archive = ?", false)
	}
	if err := query.Find(&projects).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch projects")
		return
	}
	respondJSON(w, http.StatusOK, projects)
}

func (r *Router) getProject(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var project models.Project
	err := r.db.Preload("PrimaryLabContact").Preload("CRMProject").
		Preload("CRMProject.Quotes").Preload("Order").
		First(&project, id).Error
	if err != nil {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}
	respondJSON(w, http.StatusOK, project)
}

func (r *Router) createProject(w http.ResponseWriter, req *http.Request) {
	var projReq ProjectRequest
	if err := json.NewDecoder(req.Body).Decode(&projReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if projReq.Name == nil || *projReq.Name == "" {
		respondError(w, http.StatusBadRequest, "Project name is required")
		return
	}
	if projReq.PrimaryLabContact == nil {
		respondError(w, http.StatusBadRequest, "primary_lab_contact is required")
		return
	}

	var project models.Project
	project.Name = *projReq.Name
	if err := r.applyProjectRequest(&project, &projReq); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.db.Create(&project).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create project")
		return
	}
	respondJSON(w, http.StatusCreated, project)
}

// updateProject applies a partial update. The project policy table keeps
// system-assigned identifiers out and gates the lab contact to staff.
func (r *Router) updateProject(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var project models.Project
	if err := r.db.Preload("PrimaryLabContact").First(&project, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	scrubbed, err := permissions.ProjectFields.ScrubUpdate(payload, toMap(project), middleware.IsStaff(req.Context()))
	if err != nil {
		respondPermissionError(w, err)
		return
	}

	var projReq ProjectRequest
	if err := remarshal(scrubbed, &projReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if projReq.Name != nil {
		project.Name = *projReq.Name
	}
	if err := r.applyProjectRequest(&project, &projReq); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.db.Save(&project).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update project")
		return
	}
	respondJSON(w, http.StatusOK, project)
}

func (r *Router) deleteProject(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var project models.Project
	if err := r.db.First(&project, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}

	var products int64
	r.db.Model(&models.Product{}).Where("project_id = ?", project.ID).Count(&products)
	if products > 0 {
		respondError(w, http.StatusConflict, "Project still has products")
		return
	}

	if err := r.db.Delete(&project).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// applyProjectRequest resolves references and copies writable fields. The
// primary lab contact must be an active staff member.
func (r *Router) applyProjectRequest(project *models.Project, req *ProjectRequest) error {
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Archive != nil {
		project.Archive = *req.Archive
	}
	if req.OrderID != nil {
		project.OrderID = req.OrderID
	}
	if req.PrimaryLabContact != nil {
		var contact models.User
		if err := r.db.Where("username = ?", *req.PrimaryLabContact).First(&contact).Error; err != nil {
			return errors.New("primary lab contact not found: " + *req.PrimaryLabContact)
		}
		if !contact.IsStaff() {
			return errors.New("primary lab contact must be a staff member")
		}
		project.PrimaryLabContactID = contact.ID
		project.PrimaryLabContact = contact
	}
	if req.CRMProjectIdentifier != nil {
		if *req.CRMProjectIdentifier == "" {
			project.CRMProjectID = nil
			project.CRMProject = nil
		} else {
			var crmProject models.CRMProject
			if err := r.db.Where("project_identifier = ?", *req.CRMProjectIdentifier).First(&crmProject).Error; err != nil {
				return errors.New("CRM project not found: " + *req.CRMProjectIdentifier)
			}
			project.CRMProjectID = &crmProject.ID
			project.CRMProject = &crmProject
		}
	}
	return nil
}

// --- Work logs ---

// WorkLogRequest records time against a project task
type WorkLogRequest struct {
	Task       string     `json:"task"`
	StartTime  *time.Time `json:"start_time"`
	FinishTime *time.Time `json:"finish_time"`
}

// workLogView adds the derived hour count
type workLogView struct {
	models.WorkLog
	Hours int `json:"hours"`
}

func (r *Router) listWorkLogs(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var logs []models.WorkLog
	err := r.db.Preload("CreatedBy").Where("project_id = ?", id).
		Order("start_time").Find(&logs).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch work logs")
		return
	}

	views := make([]workLogView, 0, len(logs))
	for _, l := range logs {
		views = append(views, workLogView{WorkLog: l, Hours: l.Hours()})
	}
	respondJSON(w, http.StatusOK, views)
}

func (r *Router) createWorkLog(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var project models.Project
	if err := r.db.First(&project, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}

	var logReq WorkLogRequest
	if err := json.NewDecoder(req.Body).Decode(&logReq); err != nil || logReq.Task == "" {
		respondError(w, http.StatusBadRequest, "Task is required")
		return
	}

	workLog := models.WorkLog{
		ProjectID:   project.ID,
		Task:        logReq.Task,
		CreatedByID: middleware.UserIDFromContext(req.Context()),
		StartTime:   logReq.StartTime,
		FinishTime:  logReq.FinishTime,
	}
	if err := r.db.Create(&workLog).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create work log")
		return
	}
	respondJSON(w, http.StatusCreated, workLogView{WorkLog: workLog, Hours: workLog.Hours()})
}
