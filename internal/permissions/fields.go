// Package permissions holds the per-field read/write policy tables applied at
// the serialization boundary. A policy table maps serialized field names to
// capabilities; everything not listed is plainly readable and writable.
package permissions

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrStaffOnly is returned when a non-staff caller writes a staff-gated field
	ErrStaffOnly = errors.New("field may only be set by staff")

	// ErrReadOnly is returned when a caller tries to change a read-only field
	ErrReadOnly = errors.New("field is read-only")
)

// FieldPolicy describes who may read or write a single serialized field
type FieldPolicy struct {
	// ReadOnly fields never accept caller-supplied values
	ReadOnly bool
	// StaffOnly fields are writable only by members of the staff group
	StaffOnly bool
	// WriteOnly fields are accepted on write but never echoed in responses
	WriteOnly bool
}

// FieldPolicies is the policy table for one entity
type FieldPolicies map[string]FieldPolicy

// Policy tables for the REST-facing entities. Field names match the JSON
// representation.
var (
	ProjectFields = FieldPolicies{
		"identifier":          {ReadOnly: true},
		"project_identifier":  {ReadOnly: true},
		"date_started":        {ReadOnly: true},
		"crm_project":         {ReadOnly: true},
		"crm_project_id":      {ReadOnly: true},
		"primary_lab_contact": {StaffOnly: true},
	}

	ProductFields = FieldPolicies{
		"identifier":         {ReadOnly: true},
		"product_identifier": {ReadOnly: true},
		"on_workflow":        {ReadOnly: true},
		"on_workflow_name":   {ReadOnly: true},
		"created_by":         {ReadOnly: true},
		"created_by_id":      {ReadOnly: true},
		"created_on":         {ReadOnly: true},
		"last_modified_on":   {ReadOnly: true},
		"linked_inventory":   {ReadOnly: true},
		"design":             {WriteOnly: true},
	}

	ItemFields = FieldPolicies{
		"added_by":        {ReadOnly: true},
		"added_by_id":     {ReadOnly: true},
		"added_on":        {ReadOnly: true},
		"last_updated_on": {ReadOnly: true},
	}
)

// ScrubUpdate enforces the write side of a policy table on a decoded JSON
// payload. Read-only fields are rejected when the caller supplies a value
// that differs from the current one (an unchanged echo is tolerated so
// round-tripped records still update). Staff-only fields from non-staff
// callers fail and leave the record untouched.
func (p FieldPolicies) ScrubUpdate(payload, current map[string]interface{}, isStaff bool) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(payload))
	for field, value := range payload {
		pol, ok := p[field]
		if !ok {
			out[field] = value
			continue
		}
		if pol.ReadOnly {
			if cur, have := current[field]; have && jsonEqual(cur, value) {
				continue
			}
			return nil, fmt.Errorf("%w: %s", ErrReadOnly, field)
		}
		if pol.StaffOnly && !isStaff {
			return nil, fmt.Errorf("%w: %s", ErrStaffOnly, field)
		}
		out[field] = value
	}
	return out, nil
}

// jsonEqual compares two values by their JSON form, so float64(5) from a
// decoded payload matches int(5) from a serialized record
func jsonEqual(a, b interface{}) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(aj) == string(bj)
}
