package models

import (
	"time"

	"gorm.io/gorm"
)

// ItemType is a tree-based taxonomy of item kinds. Each type can have a parent
// and any number of children; Path and Level are maintained from the parent
// chain on every save.
type ItemType struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:150;uniqueIndex;not null" json:"name"`
	ParentID *uint  `gorm:"index" json:"parent_id,omitempty"`
	Path     string `gorm:"size:1024;index" json:"path"`
	Level    int    `gorm:"default:0" json:"level"`

	Parent   *ItemType  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []ItemType `gorm:"foreignKey:ParentID" json:"children,omitempty"`

	prevPath string `gorm:"-"`
}

func (ItemType) TableName() string {
	return "item_types"
}

// BeforeSave recomputes Level and Path from the parent chain and rejects
// cyclic parent assignments
func (t *ItemType) BeforeSave(tx *gorm.DB) error {
	if t.ID != 0 {
		err := tx.Table(t.TableName()).Select("path").Where("id = ?", t.ID).Scan(&t.prevPath).Error
		if err != nil {
			return err
		}
	}
	level, path, err := resolveTreePosition(tx, t.TableName(), t.ID, t.ParentID, t.Name)
	if err != nil {
		return err
	}
	t.Level = level
	t.Path = path
	return nil
}

// AfterSave rewrites descendant paths when this node was renamed or reparented
func (t *ItemType) AfterSave(tx *gorm.DB) error {
	if t.prevPath == "" || t.prevPath == t.Path {
		return nil
	}
	prevLevel := len(ancestorNames(t.prevPath, true)) - 1
	return rewriteDescendantPaths(tx, t.TableName(), t.prevPath, t.Path, t.Level-prevLevel)
}

// HasChildren reports whether any node sits below this one
func (t *ItemType) HasChildren(tx *gorm.DB) (bool, error) {
	n, err := t.DescendantCount(tx)
	return n > 0, err
}

// DescendantCount counts all nodes below this one, at any depth
func (t *ItemType) DescendantCount(tx *gorm.DB) (int64, error) {
	return countDescendants(tx, t.TableName(), t.Path)
}

// DisplayName returns the name prefixed with two dashes per depth level
func (t *ItemType) DisplayName() string {
	return displayName(t.Name, t.Level)
}

// AncestorNames returns the root-to-self name sequence
func (t *ItemType) AncestorNames(includeSelf bool) []string {
	return ancestorNames(t.Path, includeSelf)
}

// Root returns the name of this node's root ancestor
func (t *ItemType) Root() string {
	return rootName(t.Path, t.Name)
}

// Location is a tree of physical storage places (building, room, freezer,
// shelf...). Same tree mechanics as ItemType, plus an optional short code
// used on printed labels.
type Location struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"size:100;not null" json:"name"`
	Code     *string `gorm:"size:6;uniqueIndex" json:"code,omitempty"`
	ParentID *uint   `gorm:"index" json:"parent_id,omitempty"`
	Path     string  `gorm:"size:1024;index" json:"path"`
	Level    int     `gorm:"default:0" json:"level"`

	Parent   *Location  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Location `gorm:"foreignKey:ParentID" json:"children,omitempty"`

	prevPath string `gorm:"-"`
}

func (Location) TableName() string {
	return "locations"
}

func (l *Location) BeforeSave(tx *gorm.DB) error {
	if l.ID != 0 {
		err := tx.Table(l.TableName()).Select("path").Where("id = ?", l.ID).Scan(&l.prevPath).Error
		if err != nil {
			return err
		}
	}
	level, path, err := resolveTreePosition(tx, l.TableName(), l.ID, l.ParentID, l.Name)
	if err != nil {
		return err
	}
	l.Level = level
	l.Path = path
	return nil
}

func (l *Location) AfterSave(tx *gorm.DB) error {
	if l.prevPath == "" || l.prevPath == l.Path {
		return nil
	}
	prevLevel := len(ancestorNames(l.prevPath, true)) - 1
	return rewriteDescendantPaths(tx, l.TableName(), l.prevPath, l.Path, l.Level-prevLevel)
}

// HasChildren reports whether any node sits below this one
func (l *Location) HasChildren(tx *gorm.DB) (bool, error) {
	n, err := l.DescendantCount(tx)
	return n > 0, err
}

// DescendantCount counts all nodes below this one, at any depth
func (l *Location) DescendantCount(tx *gorm.DB) (int64, error) {
	return countDescendants(tx, l.TableName(), l.Path)
}

// DisplayName returns the name prefixed with two dashes per depth level
func (l *Location) DisplayName() string {
	return displayName(l.Name, l.Level)
}

// AncestorNames returns the root-to-self name sequence
func (l *Location) AncestorNames(includeSelf bool) []string {
	return ancestorNames(l.Path, includeSelf)
}

// Root returns the name of this node's root ancestor
func (l *Location) Root() string {
	return rootName(l.Path, l.Name)
}

// Tag is a free-form label attached to items
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:30;not null" json:"name"`
}

func (Tag) TableName() string {
	return "tags"
}

// AmountMeasure is a unit of measurement and its printed symbol. Reference
// data; both columns are globally unique.
type AmountMeasure struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Symbol string `gorm:"size:10;uniqueIndex;not null" json:"symbol"`
}

func (AmountMeasure) TableName() string {
	return "amount_measures"
}

func (m AmountMeasure) String() string {
	return m.Name + " (" + m.Symbol + ")"
}

// Set is a named grouping of inventory items
type Set struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:40;not null" json:"name"`
	IsPublic  bool      `gorm:"default:false" json:"is_public"`
	IsPartset bool      `gorm:"default:false" json:"is_partset"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []Item `gorm:"many2many:item_sets" json:"items,omitempty"`
}

func (Set) TableName() string {
	return "sets"
}

// NumberOfItems counts the set's members
func (s *Set) NumberOfItems(tx *gorm.DB) (int64, error) {
	assoc := tx.Model(s).Association("Items")
	return assoc.Count(), assoc.Error
}
