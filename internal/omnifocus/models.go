package omnifocus

import "time"

// Item is a transient snapshot of one OmniFocus task.
type Item struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	DeferDate *time.Time `json:"deferDate,omitempty"`
	Completed bool       `json:"completed"`
	Children  []*Item    `json:"children,omitempty"`
}

// Container is a transient snapshot of one project, holding its direct
// items and nested sub-projects.
type Container struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Items    []*Item      `json:"items,omitempty"`
	Children []*Container `json:"children,omitempty"`
}

// NewTask describes a task to create in the store.
type NewTask struct {
	Name      string
	Note      string
	Project   string // empty → inbox
	Tags      []string
	DeferDate *time.Time
}
