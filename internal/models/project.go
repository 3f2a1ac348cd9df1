package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Project numbering is configured once at startup; identifiers count up from
// projectIdentifierStart and are rendered with projectIdentifierPrefix.
var (
	projectIdentifierPrefix = "GM"
	projectIdentifierStart  = 100
)

// SetProjectNumbering configures project identifier generation
func SetProjectNumbering(prefix string, start int) {
	projectIdentifierPrefix = prefix
	if start < 1 {
		start = 1
	}
	projectIdentifierStart = start
}

// Project is a container for products and carries the key identifying
// information for a piece of customer work
type Project struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:200;not null" json:"name"`
	Description string `json:"description,omitempty"`

	// Identifier is assigned from a global sequence on first save and never
	// accepted from callers
	Identifier        int    `gorm:"uniqueIndex" json:"identifier"`
	ProjectIdentifier string `gorm:"size:20" json:"project_identifier"`

	OrderID *uint  `json:"order_id,omitempty"`
	Order   *Order `json:"order,omitempty"`

	DateStarted time.Time `gorm:"autoCreateTime" json:"date_started"`
	Archive     bool      `gorm:"default:false" json:"archive"`

	PrimaryLabContactID uint `gorm:"not null" json:"primary_lab_contact_id"`
	PrimaryLabContact   User `json:"primary_lab_contact,omitempty"`

	CRMProjectID *uint       `json:"crm_project_id,omitempty"`
	CRMProject   *CRMProject `json:"crm_project,omitempty"`
}

func (Project) TableName() string {
	return "projects"
}

// BeforeCreate assigns the next identifier in the global project sequence.
// Runs after BeforeSave in GORM's hook order, so the prefixed form is redone
// here once the number is known.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.Identifier == 0 {
		var last int
		row := tx.Table(p.TableName()).Select("identifier").Order("identifier DESC").Limit(1)
		if err := row.Scan(&last).Error; err != nil {
			return err
		}
		if last > 0 {
			p.Identifier = last + 1
		} else {
			p.Identifier = projectIdentifierStart
		}
	}
	p.ProjectIdentifier = fmt.Sprintf("%s%d", projectIdentifierPrefix, p.Identifier)
	return nil
}

// BeforeSave keeps the prefixed identifier in step with the numeric one
func (p *Project) BeforeSave(tx *gorm.DB) error {
	if p.Identifier != 0 {
		p.ProjectIdentifier = fmt.Sprintf("%s%d", projectIdentifierPrefix, p.Identifier)
	}
	return nil
}

// ProductStatus is the status of a product as it moves through workflows
type ProductStatus struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `json:"description,omitempty"`
}

func (ProductStatus) TableName() string {
	return "product_statuses"
}

// Product is a single deliverable progressing through the system as part of
// a project
type Product struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Identifier counts up per project; ProductIdentifier is the prefixed
	// form ("GM101-2"). Both are system-assigned.
	Identifier        int    `json:"identifier"`
	ProductIdentifier string `gorm:"size:20;index" json:"product_identifier"`

	Name      string `gorm:"size:200;not null" json:"name"`
	FlagIssue bool   `gorm:"default:false" json:"flag_issue"`

	StatusID uint          `gorm:"not null" json:"status_id"`
	Status   ProductStatus `json:"status,omitempty"`

	ProductTypeID uint     `gorm:"not null" json:"product_type_id"`
	ProductType   ItemType `json:"product_type,omitempty"`

	OptimisedForID *uint     `json:"optimised_for_id,omitempty"`
	OptimisedFor   *Organism `json:"optimised_for,omitempty"`

	CreatedByID *uint `json:"created_by_id,omitempty"`
	CreatedBy   *User `json:"created_by,omitempty"`

	CreatedOn      time.Time `gorm:"autoCreateTime" json:"created_on"`
	LastModifiedOn time.Time `gorm:"autoUpdateTime" json:"last_modified_on"`

	ProjectID uint    `gorm:"index;not null" json:"project_id"`
	Project   Project `json:"-"`

	// Design holds the CAD design for the product. Write-only: accepted from
	// callers but never echoed back in responses.
	Design string `json:"-"`

	LinkedInventory []Item `gorm:"many2many:product_inventory" json:"linked_inventory,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// BeforeCreate assigns the next identifier within the product's project and
// derives the prefixed form from it
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.Identifier == 0 {
		var last int
		row := tx.Table(p.TableName()).Select("identifier").
			Where("project_id = ?", p.ProjectID).
			Order("identifier DESC").Limit(1)
		if err := row.Scan(&last).Error; err != nil {
			return err
		}
		p.Identifier = last + 1
	}
	return p.refreshProductIdentifier(tx)
}

// BeforeSave recomputes the prefixed product identifier from the owning
// project on every update
func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.Identifier == 0 {
		// Create path: number not assigned yet, BeforeCreate finishes the job
		return nil
	}
	return p.refreshProductIdentifier(tx)
}

func (p *Product) refreshProductIdentifier(tx *gorm.DB) error {
	projectIdentifier := p.Project.ProjectIdentifier
	if projectIdentifier == "" {
		if err := tx.Table(Project{}.TableName()).Select("project_identifier").
			Where("id = ?", p.ProjectID).Scan(&projectIdentifier).Error; err != nil {
			return err
		}
	}
	p.ProductIdentifier = fmt.Sprintf("%s-%d", projectIdentifier, p.Identifier)
	return nil
}

// Comment is a user-identifiable note on a product
type Comment struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	ProductID uint `gorm:"index;not null" json:"product_id"`

	UserID uint `gorm:"not null" json:"user_id"`
	User   User `json:"user,omitempty"`

	DateCreated time.Time `gorm:"autoCreateTime" json:"date_created"`
	Text        string    `json:"text"`
}

func (Comment) TableName() string {
	return "comments"
}

// WorkLog records time spent on a task within a project
type WorkLog struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProjectID uint   `gorm:"index;not null" json:"project_id"`
	Task      string `gorm:"size:200;not null" json:"task"`

	CreatedByID uint `gorm:"not null" json:"created_by_id"`
	CreatedBy   User `json:"created_by,omitempty"`

	StartTime  *time.Time `json:"start_time,omitempty"`
	FinishTime *time.Time `json:"finish_time,omitempty"`
}

func (WorkLog) TableName() string {
	return "work_logs"
}

// Hours returns the whole hours between start and finish, zero when either
// end is missing
func (w *WorkLog) Hours() int {
	if w.StartTime == nil || w.FinishTime == nil {
		return 0
	}
	return int(w.FinishTime.Sub(*w.StartTime).Hours())
}
