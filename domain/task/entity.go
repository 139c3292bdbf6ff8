package task

// Task is a persisted to-do item. The ID is assigned by the store when the
// row is inserted and never changes afterwards.
type Task struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	DueDate     *Date  `gorm:"type:date" json:"due_date"`
	Tag         string `gorm:"size:50" json:"tag,omitempty"`
}

// TableName returns the table name for Task model.
func (Task) TableName() string {
	return "tasks"
}

// DefaultTags are the classifications offered by the task dialog.
var DefaultTags = []string{"Personal", "Work", "Urgent"}

// Draft is what a user fills in when adding or editing a task.
type Draft struct {
	Name        string
	Description string
	DueDate     Date
	Tag         string
}

// Draft returns the editable fields of t.
func (t Task) Draft() Draft {
	d := Draft{Name: t.Name, Description: t.Description, Tag: t.Tag}
	if t.DueDate != nil {
		d.DueDate = *t.DueDate
	}
	return d
}
