package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Placement is one validated entry of a reorder request. ListID is uuid.Nil
// for list placements.
type Placement struct {
	ID       uuid.UUID
	ListID   uuid.UUID
	Position int
}

// OrderBatch is a fully validated reorder request. It can only be built by
// ParseListOrder or ParseTaskOrder, so holding one means no entry is invalid.
type OrderBatch struct {
	placements []Placement
}

func (b OrderBatch) Len() int { return len(b.placements) }

// Placements returns the entries in request order.
func (b OrderBatch) Placements() []Placement {
	out := make([]Placement, len(b.placements))
	copy(out, b.placements)
	return out
}

// rawPlacement is the loosely typed shape clients send. Fields are left as
// arbitrary JSON so type errors can be reported against the offending id.
type rawPlacement struct {
	ID       any `json:"_id"`
	ListID   any `json:"listID"`
	Position any `json:"position"`
}

// ParseListOrder validates a listsOrder payload. Either every entry is valid
// or an error describing the first bad entry is returned.
func ParseListOrder(raw json.RawMessage) (OrderBatch, error) {
	entries, err := splitOrder(raw, "Lists order must be an array")
	if err != nil {
		return OrderBatch{}, err
	}

	placements := make([]Placement, 0, len(entries))
	for _, e := range entries {
		id, ok := parseAnyID(e.ID)
		if !ok {
			return OrderBatch{}, Validationf(CodeInvalidID, "Invalid list ID : %v", display(e.ID))
		}
		pos, ok := parsePosition(e.Position)
		if !ok {
			return OrderBatch{}, Validationf(CodeInvalidPosition, "Invalid position for list ID : %s", id)
		}
		placements = append(placements, Placement{ID: id, Position: pos})
	}
	return OrderBatch{placements: placements}, nil
}

// ParseTaskOrder validates a tasksOrder payload. Each entry also names the
// list the task should end up in.
func ParseTaskOrder(raw json.RawMessage) (OrderBatch, error) {
	entries, err := splitOrder(raw, "Tasks order must be an array")
	if err != nil {
		return OrderBatch{}, err
	}

	placements := make([]Placement, 0, len(entries))
	for _, e := range entries {
		id, ok := parseAnyID(e.ID)
		if !ok {
			return OrderBatch{}, Validationf(CodeInvalidID, "Invalid task ID : %v", display(e.ID))
		}
		listID, ok := parseAnyID(e.ListID)
		if !ok {
			return OrderBatch{}, Validationf(CodeInvalidID, "Invalid list ID : %v", display(e.ListID))
		}
		pos, ok := parsePosition(e.Position)
		if !ok {
			return OrderBatch{}, Validationf(CodeInvalidPosition, "Invalid position for task ID : %s", id)
		}
		placements = append(placements, Placement{ID: id, ListID: listID, Position: pos})
	}
	return OrderBatch{placements: placements}, nil
}

func splitOrder(raw json.RawMessage, typeMsg string) ([]rawPlacement, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, Validationf(CodeTypeMismatch, "%s", typeMsg)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, Validationf(CodeTypeMismatch, "%s", typeMsg)
	}
	if len(elems) == 0 {
		return nil, Validation(CodeMissingFields)
	}

	entries := make([]rawPlacement, len(elems))
	for i, elem := range elems {
		// Non-object entries stay zero valued and fail the id check below.
		_ = json.Unmarshal(elem, &entries[i])
	}
	return entries, nil
}

func parseAnyID(v any) (uuid.UUID, bool) {
	s, ok := v.(string)
	if !ok {
		return uuid.Nil, false
	}
	return ParseID(s)
}

func parsePosition(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || f < 0 || f > math.MaxInt32 || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func display(v any) string {
	if v == nil {
		return "undefined"
	}
	return fmt.Sprint(v)
}
