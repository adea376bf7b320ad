package policy

import "projectdesk/model"

// Principal is the authenticated caller, resolved once by the auth middleware
// and handed to handlers explicitly.
type Principal struct {
	ID      uint
	Role    string
	TokenID string
}

func (p Principal) IsManager() bool {
	return p.Role == model.RoleProjectManager
}

func (p Principal) IsMember() bool {
	return p.Role == model.RoleTeamMember
}

type Action string

const (
	ProjectCreate Action = "project.create"
	ProjectView   Action = "project.view"
	ProjectUpdate Action = "project.update"
	ProjectDelete Action = "project.delete"

	TaskView   Action = "task.view"
	TaskCreate Action = "task.create"
	TaskUpdate Action = "task.update"
	TaskDelete Action = "task.delete"
	TaskAssign Action = "task.assign"

	CommentDelete Action = "comment.delete"

	FileDownload Action = "file.download"
	FileDelete   Action = "file.delete"
)

// Target carries the ownership facts of the resource an action touches.
// Unset pointers mean "not applicable".
type Target struct {
	OwnerID    *uint // project manager owning the project
	AssigneeID *uint // task assignee
	AuthorID   *uint // comment author or file uploader
	Member     bool  // caller has a task assigned in the project
}

type predicate func(Principal, Target) bool

type rule struct {
	role  string // empty matches any role
	check predicate
}

func anyone(Principal, Target) bool { return true }

func owns(p Principal, t Target) bool {
	return t.OwnerID != nil && *t.OwnerID == p.ID
}

func assigned(p Principal, t Target) bool {
	return t.AssigneeID != nil && *t.AssigneeID == p.ID
}

func authored(p Principal, t Target) bool {
	return t.AuthorID != nil && *t.AuthorID == p.ID
}

func member(_ Principal, t Target) bool {
	return t.Member
}

func unprivileged(p Principal, _ Target) bool {
	return !p.IsManager() && !p.IsMember()
}

// table is the whole authorization model: an action is allowed when any of its
// rules matches both role and predicate.
var table = map[Action][]rule{
	ProjectCreate: {{model.RoleProjectManager, anyone}},
	ProjectView: {
		{model.RoleProjectManager, owns},
		{model.RoleTeamMember, member},
		{"", unprivileged},
	},
	ProjectUpdate: {{model.RoleProjectManager, owns}},
	ProjectDelete: {{model.RoleProjectManager, owns}},

	TaskView: {
		{model.RoleProjectManager, anyone},
		{model.RoleTeamMember, assigned},
	},
	TaskCreate: {{model.RoleProjectManager, anyone}},
	TaskUpdate: {
		{model.RoleProjectManager, anyone},
		{model.RoleTeamMember, assigned},
	},
	TaskDelete: {{model.RoleProjectManager, anyone}},
	TaskAssign: {{model.RoleProjectManager, anyone}},

	CommentDelete: {
		{"", authored},
		{model.RoleProjectManager, anyone},
	},

	FileDownload: {{"", anyone}},
	FileDelete: {
		{"", authored},
		{model.RoleProjectManager, owns},
	},
}

// Allow evaluates action for p against t. Unknown actions are denied.
func Allow(action Action, p Principal, t Target) bool {
	for _, r := range table[action] {
		if r.role != "" && r.role != p.Role {
			continue
		}
		if r.check(p, t) {
			return true
		}
	}
	return false
}

// MemberEditableTaskFields are the only fields a team member may send when
// updating a task assigned to them.
var MemberEditableTaskFields = map[string]bool{
	"status":   true,
	"deadline": true,
}
