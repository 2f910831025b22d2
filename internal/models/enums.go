package models

// TaskStatus is stored as a small integer. There is no enforced workflow:
// any status can be set directly to any other status.
type TaskStatus int

const (
	StatusTodo               TaskStatus = 0
	StatusInProgress         TaskStatus = 1
	StatusTesting            TaskStatus = 2
	StatusDone               TaskStatus = 3
	StatusBacklog            TaskStatus = 4
	StatusBlocked            TaskStatus = 5
	StatusReadyForDeployment TaskStatus = 6
	StatusRejected           TaskStatus = 7
)

// TaskPriority is stored as a small integer. A lower value means a more
// urgent task, so sorting ascending puts the most urgent tasks first.
type TaskPriority int

const (
	PriorityHighest TaskPriority = 0
	PriorityHigh    TaskPriority = 1
	PriorityMedium  TaskPriority = 2
	PriorityLow     TaskPriority = 3
	PriorityLowest  TaskPriority = 4
)

var statusLabels = map[TaskStatus]string{
	StatusTodo:               "Todo",
	StatusInProgress:         "In Progress",
	StatusTesting:            "Testing",
	StatusDone:               "Done",
	StatusBacklog:            "Backlog",
	StatusBlocked:            "Blocked",
	StatusReadyForDeployment: "Ready for Deployment",
	StatusRejected:           "Rejected",
}

var priorityLabels = map[TaskPriority]string{
	PriorityHighest: "Highest",
	PriorityHigh:    "High",
	PriorityMedium:  "Medium",
	PriorityLow:     "Low",
	PriorityLowest:  "Lowest",
}

func (s TaskStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s TaskStatus) Label() string {
	return statusLabels[s]
}

func (p TaskPriority) Valid() bool {
	_, ok := priorityLabels[p]
	return ok
}

func (p TaskPriority) Label() string {
	return priorityLabels[p]
}

// EnumOption is what the create/edit pages use to render a dropdown entry.
type EnumOption struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// StatusOptions lists all statuses in ordinal order.
func StatusOptions() []EnumOption {
	options := make([]EnumOption, 0, len(statusLabels))
	for s := StatusTodo; s <= StatusRejected; s++ {
		options = append(options, EnumOption{Value: int(s), Label: s.Label()})
	}
	return options
}

// PriorityOptions lists all priorities in ordinal order, most urgent first.
func PriorityOptions() []EnumOption {
	options := make([]EnumOption, 0, len(priorityLabels))
	for p := PriorityHighest; p <= PriorityLowest; p++ {
		options = append(options, EnumOption{Value: int(p), Label: p.Label()})
	}
	return options
}
