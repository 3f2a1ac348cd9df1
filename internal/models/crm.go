package models

import (
	"time"

	"gorm.io/datatypes"
)

// crmBaseURL is the process-wide CRM base URL that stored identifiers are
// appended to. Set once at startup from configuration.
var crmBaseURL string

// SetCRMBaseURL configures the base URL used by the CRM URL builders
func SetCRMBaseURL(url string) {
	crmBaseURL = url
}

func crmURL(identifier string) string {
	return crmBaseURL + "/" + identifier
}

// CRMAccount mirrors a customer account (and its primary contact) in the
// external CRM. Read-mostly: the CRM stays authoritative, we keep a local
// copy plus the raw provider payload from the last sync.
type CRMAccount struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	ContactIdentifier string `gorm:"size:50;not null" json:"contact_identifier"`
	AccountIdentifier string `gorm:"size:50;uniqueIndex;not null" json:"account_identifier"`
	AccountName       string `gorm:"size:200" json:"account_name"`

	UserID *uint `gorm:"uniqueIndex" json:"user_id,omitempty"`
	User   *User `json:"user,omitempty"`

	RawData      datatypes.JSON `json:"-"`
	LastSyncedAt time.Time      `json:"last_synced_at"`
}

func (CRMAccount) TableName() string {
	return "crm_accounts"
}

// ContactURL links to the contact record in the external CRM
func (a *CRMAccount) ContactURL() string {
	return crmURL(a.ContactIdentifier)
}

// AccountURL links to the account record in the external CRM
func (a *CRMAccount) AccountURL() string {
	return crmURL(a.AccountIdentifier)
}

// CRMProject mirrors a CRM project tied to a customer account, optionally
// paired with an internal order
type CRMProject struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ProjectIdentifier string    `gorm:"size:50;uniqueIndex;not null" json:"project_identifier"`
	Name              string    `gorm:"size:300" json:"name"`
	Description       string    `json:"description,omitempty"`
	DateCreated       time.Time `json:"date_created"`

	AccountID uint       `gorm:"index;not null" json:"account_id"`
	Account   CRMAccount `json:"account,omitempty"`

	OrderID *uint  `gorm:"uniqueIndex" json:"order_id,omitempty"`
	Order   *Order `json:"order,omitempty"`

	Quotes []CRMQuote `gorm:"foreignKey:ProjectID" json:"quotes,omitempty"`

	RawData      datatypes.JSON `json:"-"`
	LastSyncedAt time.Time      `json:"last_synced_at"`
}

func (CRMProject) TableName() string {
	return "crm_projects"
}

// ProjectURL links to the project record in the external CRM
func (p *CRMProject) ProjectURL() string {
	return crmURL(p.ProjectIdentifier)
}

// CRMQuote mirrors a quote raised against a CRM project
type CRMQuote struct {
	ID              uint     `gorm:"primaryKey" json:"id"`
	QuoteIdentifier string   `gorm:"size:50;uniqueIndex;not null" json:"quote_identifier"`
	QuoteNumber     string   `gorm:"size:10" json:"quote_number"`
	QuoteName       string   `gorm:"size:200" json:"quote_name"`
	Subtotal        float64  `json:"subtotal"`
	Discount        *float64 `json:"discount,omitempty"`
	Total           float64  `json:"total"`

	ProjectID uint       `gorm:"index;not null" json:"project_id"`
	Project   CRMProject `json:"-"`

	RawData      datatypes.JSON `json:"-"`
	LastSyncedAt time.Time      `json:"last_synced_at"`
}

func (CRMQuote) TableName() string {
	return "crm_quotes"
}

// QuoteURL links to the quote record in the external CRM
func (q *CRMQuote) QuoteURL() string {
	return crmURL(q.QuoteIdentifier)
}
