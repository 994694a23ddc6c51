package matrix

// Action is a gated operation named in the role matrix
type Action string

const (
	ActionAccessWorkspace Action = "workspace.access"
	ActionManageWorkspace Action = "workspace.manage"
	ActionEditNotes       Action = "notes.edit"
	ActionDeleteNotes     Action = "notes.delete"
	ActionAccessFolder    Action = "folder.access"
	ActionEditFolder      Action = "folder.edit"
	ActionManageFolder    Action = "folder.manage"
)

// roleMatrix is the YAML document structure
type roleMatrix struct {
	Roles []roleEntry `yaml:"roles"`
}

// roleEntry is one role's allowed actions
type roleEntry struct {
	Name    string   `yaml:"name"`
	Actions []string `yaml:"actions"`
}
