package domain

import (
	"encoding/json"
	"time"
)

// Project is a time-boxed food-waste reduction initiative. Follow-up projects
// point at their parent through ParentProjectID.
type Project struct {
	ID                 string              `json:"id"`
	ParentProjectID    *string             `json:"parent_project_id"`
	Name               string              `json:"name"`
	Status             Status              `json:"status"`
	Duration           Duration            `json:"duration"`
	Actions            []Action            `json:"actions"`
	RegistrationPoints []RegistrationPoint `json:"registration_points"`
	FollowUpProjects   []Project           `json:"follow_up_projects,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`

	// ParentProject is only set in responses where the same access changed the parent.
	ParentProject *Project `json:"parent_project,omitempty"`
}

// HasParent reports whether p is a follow-up project.
func (p *Project) HasParent() bool {
	return p.ParentProjectID != nil && *p.ParentProjectID != ""
}

// Clone returns a deep copy of p, so callers can mutate it freely.
func (p Project) Clone() Project {
	out := p
	if p.ParentProjectID != nil {
		id := *p.ParentProjectID
		out.ParentProjectID = &id
	}
	out.Actions = append([]Action(nil), p.Actions...)
	out.RegistrationPoints = append([]RegistrationPoint(nil), p.RegistrationPoints...)
	if p.FollowUpProjects != nil {
		out.FollowUpProjects = make([]Project, len(p.FollowUpProjects))
		for i, f := range p.FollowUpProjects {
			out.FollowUpProjects[i] = f.Clone()
		}
	}
	if p.ParentProject != nil {
		parent := p.ParentProject.Clone()
		out.ParentProject = &parent
	}
	return out
}

// Action is a user-authored remediation step recorded on a project.
type Action struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// RegistrationPoint is reference data copied through by the lifecycle engine.
// Registration-day lookups use the IDs to find registrations for a project.
type RegistrationPoint struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Query narrows a Find. Zero values mean "no filter".
type Query struct {
	IDs             []string
	ParentProjectID *string
	RootsOnly       bool
	Statuses        []Status
	Limit           int
	Offset          int

	// AfterID continues a listing after the project with this id, in the
	// store's creation order. Used for keyset paging.
	AfterID string
}

// PatchOp is a single JSON Patch operation.
type PatchOp struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}

const (
	OpAdd     = "add"
	OpReplace = "replace"
	OpRemove  = "remove"
	OpTest    = "test"
)

const (
	PathStatus             = "/status"
	PathName               = "/name"
	PathDuration           = "/duration"
	PathActions            = "/actions"
	PathRegistrationPoints = "/registration_points"
	PathParentProjectID    = "/parent_project_id"
)

// StatusOp builds a patch operation against /status.
func StatusOp(op string, s Status) PatchOp {
	raw, _ := json.Marshal(s)
	return PatchOp{Op: op, Path: PathStatus, Value: raw}
}
