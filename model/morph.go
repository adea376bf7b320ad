package model

// Kind identifies an entity that can sit on the far side of a polymorphic
// (type, id) pair: File.fileable, Notification.notifiable, Activity.subject.
type Kind string

const (
	KindUser    Kind = "user"
	KindProject Kind = "project"
	KindTask    Kind = "task"
	KindComment Kind = "comment"
	KindIssue   Kind = "issue"
)

var morphClass = map[Kind]string{
	KindUser:    "User",
	KindProject: "Project",
	KindTask:    "Task",
	KindComment: "Comment",
	KindIssue:   "Issue",
}

// Kinds lists every registered kind.
func Kinds() []Kind {
	return []Kind{KindUser, KindProject, KindTask, KindComment, KindIssue}
}

// Tag is the spelling written to the type column for new rows.
func (k Kind) Tag() string {
	return `App\Models\` + morphClass[k]
}

// Tags returns every spelling found in historical rows, canonical first.
// Older writers stored the bare class name or a doubly escaped namespace;
// reads must match all of them until the rows are backfilled.
func (k Kind) Tags() []string {
	name := morphClass[k]
	if name == "" {
		return nil
	}
	return []string{
		`App\Models\` + name,
		name,
		`App\\Models\\` + name,
	}
}

// KindOf maps any known spelling back to its kind.
func KindOf(tag string) (Kind, bool) {
	for _, k := range Kinds() {
		for _, t := range k.Tags() {
			if t == tag {
				return k, true
			}
		}
	}
	return "", false
}
