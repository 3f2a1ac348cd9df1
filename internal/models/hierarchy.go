package models

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
)

const (
	// PathSeparator joins node names in the materialized path column
	PathSeparator = "/"

	// maxTreeDepth bounds parent-chain walks so a corrupted tree cannot loop forever
	maxTreeDepth = 64
)

var (
	// ErrCyclicParent is returned when a node is assigned itself or one of its
	// descendants as parent
	ErrCyclicParent = errors.New("node cannot be parented to itself or a descendant")
)

// treeRow is the minimal projection used when walking parent chains
type treeRow struct {
	ID       uint
	Name     string
	ParentID *uint
}

// resolveTreePosition walks the parent chain of a node up to its root and returns
// the node's level (distance from root) and materialized path. The walk carries a
// visited set so self-parenting and cyclic assignments fail with ErrCyclicParent
// instead of recursing forever.
func resolveTreePosition(tx *gorm.DB, table string, id uint, parentID *uint, name string) (int, string, error) {
	names := []string{name}
	seen := map[uint]bool{}
	if id != 0 {
		seen[id] = true
	}

	cur := parentID
	for cur != nil {
		if seen[*cur] {
			return 0, "", ErrCyclicParent
		}
		seen[*cur] = true

		var row treeRow
		if err := tx.Table(table).Select("id, name, parent_id").Where("id = ?", *cur).Take(&row).Error; err != nil {
			return 0, "", fmt.Errorf("parent %d not found in %s: %w", *cur, table, err)
		}

		names = append([]string{row.Name}, names...)
		cur = row.ParentID

		if len(names) > maxTreeDepth {
			return 0, "", ErrCyclicParent
		}
	}

	return len(names) - 1, strings.Join(names, PathSeparator), nil
}

// countDescendants counts every node below the given path, not just direct children
func countDescendants(tx *gorm.DB, table, path string) (int64, error) {
	var count int64
	err := tx.Table(table).Where("path LIKE ?", path+PathSeparator+"%").Count(&count).Error
	return count, err
}

// rewriteDescendantPaths updates the stored path and level of every node under
// oldPath after a rename or reparent of their ancestor. substr is
// character-indexed in PostgreSQL, so the offset counts runes, not bytes.
func rewriteDescendantPaths(tx *gorm.DB, table, oldPath, newPath string, levelDelta int) error {
	return tx.Table(table).
		Where("path LIKE ?", oldPath+PathSeparator+"%").
		Updates(map[string]interface{}{
			"path":  gorm.Expr("? || substr(path, ?)", newPath, utf8.RuneCountInString(oldPath)+1),
			"level": gorm.Expr("level + ?", levelDelta),
		}).Error
}

// ancestorNames splits a materialized path into its root-to-self name sequence.
// With includeSelf false the final element (the node itself) is dropped.
func ancestorNames(path string, includeSelf bool) []string {
	if path == "" {
		return nil
	}
	names := strings.Split(path, PathSeparator)
	if !includeSelf {
		names = names[:len(names)-1]
	}
	return names
}

// displayName prefixes a name with two dashes per depth level; roots stay bare
func displayName(name string, level int) string {
	if level > 0 {
		return fmt.Sprintf("%s %s", strings.Repeat("--", level), name)
	}
	return name
}

// rootName returns the first element of a materialized path
func rootName(path, fallback string) string {
	if path == "" {
		return fallback
	}
	if i := strings.Index(path, PathSeparator); i >= 0 {
		return path[:i]
	}
	return path
}
