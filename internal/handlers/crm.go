package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/getlims/limsgo/internal/models"
	"github.com/gorilla/mux"
)

// crmAccountView adds the external CRM links to a mirrored account
type crmAccountView struct {
	models.CRMAccount
	ContactURL string `json:"contact_url"`
	AccountURL string `json:"account_url"`
}

type crmProjectView struct {
	models.CRMProject
	ProjectURL string `json:"project_url"`
}

type crmQuoteView struct {
	models.CRMQuote
	QuoteURL string `json:"quote_url"`
}

func (r *Router) listCRMAccounts(w http.ResponseWriter, req *http.Request) {
	var accounts []models.CRMAccount
	if err := r.db.Preload("User").Order("account_name").Find(&accounts).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch CRM accounts")
		return
	}

	views := make([]crmAccountView, 0, len(accounts))
	for i := range accounts {
		views = append(views, crmAccountView{
			CRMAccount: accounts[i],
			ContactURL: accounts[i].ContactURL(),
			AccountURL: accounts[i].AccountURL(),
		})
	}
	respondJSON(w, http.StatusOK, views)
}

// linkCRMAccountUser ties a mirrored CRM account to a local user, so customer
// logins can see their own projects
func (r *Router) linkCRMAccountUser(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])

	var account models.CRMAccount
	if err := r.db.First(&account, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "CRM account not found")
		return
	}

	var linkReq struct {
		UserID uint `json:"user_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&linkReq); err != nil || linkReq.UserID == 0 {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	var user models.User
	if err := r.db.First(&user, linkReq.UserID).Error; err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	account.UserID = &user.ID
	if err := r.db.Model(&account).Update("user_id", user.ID).Error; err != nil {
		respondError(w, http.StatusConflict, "User is already linked to another CRM account")
		return
	}

	account.User = &user
	respondJSON(w, http.StatusOK, crmAccountView{
		CRMAccount: account,
		ContactURL: account.ContactURL(),
		AccountURL: account.AccountURL(),
	})
}

func (r *Router) listCRMProjects(w http.ResponseWriter, req *http.Request) {
	var projects []models.CRMProject
	err := r.db.Preload("Account").Preload("Quotes").
		Order("date_created DESC").Find(&projects).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch CRM projects")
		return
	}

	views := make([]crmProjectView, 0, len(projects))
	for i := range projects {
		views = append(views, crmProjectView{
			CRMProject: projects[i],
			ProjectURL: projects[i].ProjectURL(),
		})
	}
	respondJSON(w, http.StatusOK, views)
}

func (r *Router) listCRMQuotes(w http.ResponseWriter, req *http.Request) {
	var quotes []models.CRMQuote
	query := r.db.Order("quote_number")
	if projectID := req.URL.Query().Get("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if err := query.Find(&quotes).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch CRM quotes")
		return
	}

	views := make([]crmQuoteView, 0, len(quotes))
	for i := range quotes {
		views = append(views, crmQuoteView{
			CRMQuote: quotes[i],
			QuoteURL: quotes[i].QuoteURL(),
		})
	}
	respondJSON(w, http.StatusOK, views)
}

// triggerCRMSync kicks off a full mirror refresh in the background
func (r *Router) triggerCRMSync(w http.ResponseWriter, req *http.Request) {
	if r.crm == nil {
		respondError(w, http.StatusServiceUnavailable, "CRM sync is not configured")
		return
	}

	go r.crm.RunFullSync()
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "sync started"})
}
