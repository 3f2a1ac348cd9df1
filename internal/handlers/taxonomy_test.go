package handlers

import (
	"encoding/json"
	"testing"
)

func decodeTreeNode(t *testing.T, body string) TreeNodeRequest {
	t.Helper()
	var nodeReq TreeNodeRequest
	if err := json.Unmarshal([]byte(body), &nodeReq); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return nodeReq
}

func TestTreeNodeParentPresence(t *testing.T) {
	// A rename-only payload leaves the parent untouched
	nodeReq := decodeTreeNode(t, `{"name": "Kühlraum"}`)
	present, id, err := nodeReq.parent()
	if err != nil {
		t.Fatalf("parent: %v", err)
	}
	if present || id != nil {
		t.Error("omitted parent_id must read as absent")
	}

	// Explicit null moves the node to root
	nodeReq = decodeTreeNode(t, `{"name": "Freezer", "parent_id": null}`)
	present, id, err = nodeReq.parent()
	if err != nil {
		t.Fatalf("parent: %v", err)
	}
	if !present || id != nil {
		t.Errorf("null parent_id: present = %v, id = %v", present, id)
	}

	// A numeric value reparents
	nodeReq = decodeTreeNode(t, `{"parent_id": 7}`)
	present, id, err = nodeReq.parent()
	if err != nil {
		t.Fatalf("parent: %v", err)
	}
	if !present || id == nil || *id != 7 {
		t.Errorf("numeric parent_id: present = %v, id = %v", present, id)
	}

	// Garbage is rejected, not silently dropped
	nodeReq = decodeTreeNode(t, `{"parent_id": "seven"}`)
	if _, _, err := nodeReq.parent(); err == nil {
		t.Error("non-numeric parent_id accepted")
	}
}
