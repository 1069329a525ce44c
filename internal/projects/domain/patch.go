package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ApplyPatch applies ops in order to a copy of p. Either every op applies or
// an error is returned and p is left untouched.
func ApplyPatch(p Project, ops []PatchOp) (Project, error) {
	out := p.Clone()
	for i, op := range ops {
		if err := applyOp(&out, op); err != nil {
			return p, fmt.Errorf("op %d (%s %s): %w", i, op.Op, op.Path, err)
		}
	}
	return out, nil
}

// TouchesActions reports whether ops add, replace or remove anything under /actions.
func TouchesActions(ops []PatchOp) bool {
	for _, op := range ops {
		if !isMutation(op.Op) {
			continue
		}
		if op.Path == PathActions || strings.HasPrefix(op.Path, PathActions+"/") {
			return true
		}
	}
	return false
}

func isMutation(op string) bool {
	return op == OpAdd || op == OpReplace || op == OpRemove
}

func applyOp(p *Project, op PatchOp) error {
	switch op.Op {
	case OpAdd, OpReplace, OpRemove, OpTest:
	default:
		return fmt.Errorf("%w: unsupported op %q", ErrInvalidPatch, op.Op)
	}

	if op.Path == PathActions || strings.HasPrefix(op.Path, PathActions+"/") {
		return applyActionsOp(p, op)
	}

	switch op.Path {
	case PathStatus:
		if op.Op == OpRemove {
			return fmt.Errorf("%w: status cannot be removed", ErrInvalidPatch)
		}
		var s Status
		if err := decode(op.Value, &s); err != nil {
			return err
		}
		if !s.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidStatus, s)
		}
		if op.Op == OpTest {
			return testEqual(p.Status == s)
		}
		p.Status = s
	case PathName:
		var name string
		if op.Op != OpRemove {
			if err := decode(op.Value, &name); err != nil {
				return err
			}
		}
		if op.Op == OpTest {
			return testEqual(p.Name == name)
		}
		p.Name = name
	case PathDuration:
		if op.Op == OpRemove {
			return fmt.Errorf("%w: duration cannot be removed", ErrInvalidPatch)
		}
		var d Duration
		if err := decode(op.Value, &d); err != nil {
			return err
		}
		if op.Op == OpTest {
			return testEqual(p.Duration == d)
		}
		if err := d.Validate(); err != nil {
			return err
		}
		p.Duration = d
	case PathRegistrationPoints:
		var points []RegistrationPoint
		if op.Op != OpRemove {
			if err := decode(op.Value, &points); err != nil {
				return err
			}
		}
		if op.Op == OpTest {
			return testJSON(p.RegistrationPoints, op.Value)
		}
		p.RegistrationPoints = points
	case PathParentProjectID:
		if op.Op == OpTest {
			if len(op.Value) == 0 {
				return fmt.Errorf("%w: missing value", ErrInvalidPatch)
			}
			return testJSON(p.ParentProjectID, op.Value)
		}
		return fmt.Errorf("%w: parent_project_id is immutable", ErrInvalidPatch)
	default:
		return fmt.Errorf("%w: unsupported path %q", ErrInvalidPatch, op.Path)
	}
	return nil
}

func applyActionsOp(p *Project, op PatchOp) error {
	rest := strings.TrimPrefix(op.Path, PathActions)
	if rest == "" {
		var actions []Action
		if op.Op != OpRemove {
			if err := decode(op.Value, &actions); err != nil {
				return err
			}
		}
		if op.Op == OpTest {
			return testJSON(p.Actions, op.Value)
		}
		p.Actions = actions
		return nil
	}

	key := strings.TrimPrefix(rest, "/")
	if key == "-" {
		if op.Op != OpAdd {
			return fmt.Errorf("%w: %q only supports add", ErrInvalidPatch, op.Path)
		}
		var a Action
		if err := decode(op.Value, &a); err != nil {
			return err
		}
		p.Actions = append(p.Actions, a)
		return nil
	}

	idx, err := strconv.Atoi(key)
	if err != nil || idx < 0 {
		return fmt.Errorf("%w: bad action index %q", ErrInvalidPatch, key)
	}

	switch op.Op {
	case OpAdd:
		if idx > len(p.Actions) {
			return fmt.Errorf("%w: action index %d out of range", ErrInvalidPatch, idx)
		}
		var a Action
		if err := decode(op.Value, &a); err != nil {
			return err
		}
		p.Actions = append(p.Actions[:idx], append([]Action{a}, p.Actions[idx:]...)...)
	case OpReplace, OpRemove, OpTest:
		if idx >= len(p.Actions) {
			return fmt.Errorf("%w: action index %d out of range", ErrInvalidPatch, idx)
		}
		switch op.Op {
		case OpReplace:
			var a Action
			if err := decode(op.Value, &a); err != nil {
				return err
			}
			p.Actions[idx] = a
		case OpRemove:
			p.Actions = append(p.Actions[:idx], p.Actions[idx+1:]...)
		case OpTest:
			return testJSON(p.Actions[idx], op.Value)
		}
	}
	return nil
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing value", ErrInvalidPatch)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return nil
}

func testEqual(ok bool) error {
	if !ok {
		return ErrPatchConflict
	}
	return nil
}

func testJSON(current any, want json.RawMessage) error {
	got, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	var a, b any
	if err := json.Unmarshal(got, &a); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	if err := json.Unmarshal(want, &b); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	ga, _ := json.Marshal(a)
	gb, _ := json.Marshal(b)
	return testEqual(bytes.Equal(ga, gb))
}
