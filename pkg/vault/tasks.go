package vault

import (
	"sort"
	"sync"
	"time"
)

// TaskState is the lifecycle state of a renewal task.
type TaskState string

const (
	TaskStarting TaskState = "starting"
	TaskRenewing TaskState = "renewing"
	// TaskInactive means the token was not renewable, or could not be looked
	// up, and the task exited without renewing.
	TaskInactive TaskState = "inactive"
	TaskFailed   TaskState = "failed"
	TaskStopped  TaskState = "stopped"
)

// TaskStatus is a point-in-time view of one renewal task.
type TaskStatus struct {
	ID          uint64    `json:"id"`
	Address     string    `json:"address"`
	AuthMethod  AuthKind  `json:"auth_method"`
	State       TaskState `json:"state"`
	StartedAt   time.Time `json:"started_at"`
	LastRenewal time.Time `json:"last_renewal"`
	Renewals    int       `json:"renewals"`
	LastError   string    `json:"last_error,omitempty"`
}

// TaskRegistry records which renewal task belongs to which client. It is
// diagnostic only; tasks cannot be stopped through it.
type TaskRegistry struct {
	mu     sync.RWMutex
	nextID uint64
	tasks  map[uint64]*TaskStatus
}

// NewTaskRegistry creates an empty registry.
func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{
		tasks: make(map[uint64]*TaskStatus),
	}
}

func (r *TaskRegistry) register(address string, kind AuthKind, now time.Time) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.tasks[r.nextID] = &TaskStatus{
		ID:         r.nextID,
		Address:    address,
		AuthMethod: kind,
		State:      TaskStarting,
		StartedAt:  now,
	}
	return r.nextID
}

func (r *TaskRegistry) update(id uint64, fn func(*TaskStatus)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task, ok := r.tasks[id]; ok {
		fn(task)
	}
}

func (r *TaskRegistry) setState(id uint64, state TaskState) {
	r.update(id, func(t *TaskStatus) { t.State = state })
}

func (r *TaskRegistry) recordRenewal(id uint64, at time.Time) {
	r.update(id, func(t *TaskStatus) {
		t.State = TaskRenewing
		t.LastRenewal = at
		t.Renewals++
	})
}

func (r *TaskRegistry) recordFailure(id uint64, err error) {
	r.update(id, func(t *TaskStatus) {
		t.State = TaskFailed
		t.LastError = err.Error()
	})
}

// Get returns the status of a single task.
func (r *TaskRegistry) Get(id uint64) (TaskStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return TaskStatus{}, false
	}
	return *task, true
}

// Snapshot returns a copy of every task status ordered by task ID.
func (r *TaskRegistry) Snapshot() []TaskStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make([]TaskStatus, 0, len(r.tasks))
	for _, task := range r.tasks {
		statuses = append(statuses, *task)
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].ID < statuses[j].ID
	})
	return statuses
}
