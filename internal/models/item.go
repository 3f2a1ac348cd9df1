package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

var (
	// ErrNoLocation is returned when a path is requested for an item that has
	// no location assigned
	ErrNoLocation = errors.New("item has no location")
)

// Item is a single entry in the lab inventory: a reagent, a construct, a
// sample plate and so on. Everything else in the inventory hangs off it.
type Item struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:200;index;not null" json:"name"`
	Identifier  *string `gorm:"size:128;uniqueIndex" json:"identifier,omitempty"`
	Description string  `json:"description,omitempty"`

	ItemTypeID uint     `gorm:"index;not null" json:"item_type_id"`
	ItemType   ItemType `json:"item_type,omitempty"`

	Tags []Tag `gorm:"many2many:item_tags" json:"tags,omitempty"`

	// InInventory is a one-way latch: forced true whenever the item is saved
	// with a positive amount, never cleared when the amount returns to zero
	InInventory     bool `gorm:"default:false" json:"in_inventory"`
	AmountAvailable int  `gorm:"default:0" json:"amount_available"`

	AmountMeasureID uint          `gorm:"not null" json:"amount_measure_id"`
	AmountMeasure   AmountMeasure `json:"amount_measure,omitempty"`

	LocationID *uint     `gorm:"index" json:"location_id,omitempty"`
	Location   *Location `json:"location,omitempty"`

	AddedByID uint `gorm:"not null" json:"added_by_id"`
	AddedBy   User `json:"added_by,omitempty"`

	AddedOn       time.Time `gorm:"autoCreateTime" json:"added_on"`
	LastUpdatedOn time.Time `gorm:"autoUpdateTime" json:"last_updated_on"`

	Sets []Set `gorm:"many2many:item_sets" json:"sets,omitempty"`

	// CreatedFrom records provenance: the items this one was derived from.
	// The relation is directed, so derivation edges live in their own join
	// table and are never mirrored back.
	CreatedFrom []Item `gorm:"many2many:item_derivations;joinForeignKey:ItemID;joinReferences:DerivedFromID" json:"created_from,omitempty"`

	Properties []ItemProperty `gorm:"foreignKey:ItemID" json:"properties,omitempty"`
	Transfers  []ItemTransfer `gorm:"foreignKey:ItemID" json:"transfers,omitempty"`
}

func (Item) TableName() string {
	return "items"
}

// BeforeSave sets the in-inventory latch inside the same write that changes
// the amount, so concurrent quantity updates can never leave it stale. The
// latch is deliberately never cleared here.
func (i *Item) BeforeSave(tx *gorm.DB) error {
	if i.AmountAvailable > 0 {
		i.InInventory = true
	}
	return nil
}

// TagSummary joins the loaded tag names with commas. Ordering follows the
// loaded association and is not guaranteed.
func (i *Item) TagSummary() string {
	names := make([]string, 0, len(i.Tags))
	for _, t := range i.Tags {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}

// LocationPath renders the item's storage position as a root-to-location
// breadcrumb ("Building > Freezer 2 > Shelf A"). The location association
// must be loaded; items without a location have no path.
func (i *Item) LocationPath() (string, error) {
	if i.LocationID == nil || i.Location == nil {
		return "", ErrNoLocation
	}
	return strings.Join(i.Location.AncestorNames(true), " > "), nil
}

// ItemProperty is a free-form name/value pair on an item. Names may repeat
// within the same item.
type ItemProperty struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	ItemID uint   `gorm:"index;not null" json:"item_id"`
	Name   string `gorm:"size:200;not null" json:"name"`
	Value  string `json:"value"`
}

func (ItemProperty) TableName() string {
	return "item_properties"
}

// ItemTransfer is an append-only record of an amount moved in or out of an
// item for an experimental run. Transfers are immutable once created apart
// from the completion flag; listings are always newest-first.
type ItemTransfer struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	ItemID uint `gorm:"index;not null" json:"item_id"`
	Item   Item `json:"-"`

	AmountTaken     int           `gorm:"default:0" json:"amount_taken"`
	AmountMeasureID uint          `gorm:"not null" json:"amount_measure_id"`
	AmountMeasure   AmountMeasure `json:"amount_measure,omitempty"`

	RunIdentifier string `gorm:"size:64" json:"run_identifier,omitempty"`
	Barcode       string `gorm:"size:20" json:"barcode,omitempty"`
	Coordinates   string `gorm:"size:2" json:"coordinates,omitempty"`

	DateCreated time.Time `gorm:"autoCreateTime;index" json:"date_created"`

	// IsAddition marks stock coming in rather than being taken away
	IsAddition bool `gorm:"default:false" json:"is_addition"`

	TransferComplete bool `gorm:"default:false" json:"transfer_complete"`
}

func (ItemTransfer) TableName() string {
	return "item_transfers"
}

// BeforeCreate validates the plate well reference
func (t *ItemTransfer) BeforeCreate(tx *gorm.DB) error {
	if utf8.RuneCountInString(t.Coordinates) > 2 {
		return fmt.Errorf("coordinates %q exceed 2 characters", t.Coordinates)
	}
	return nil
}

// TransfersNewestFirst scopes a transfer query to the default listing order
func TransfersNewestFirst(tx *gorm.DB) *gorm.DB {
	return tx.Order("date_created DESC, id DESC")
}
