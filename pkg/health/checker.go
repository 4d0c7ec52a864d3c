package health

import (
	"fmt"
	"strings"

	"vault-bootstrap/pkg/vault"
)

type Checker interface {
	Check() (*CheckResult, error)
}

type CheckResult struct {
	Success bool
	Error   error
	Tasks   int
}

// TaskSource lists renewal tasks; satisfied by *vault.TaskRegistry.
type TaskSource interface {
	Snapshot() []vault.TaskStatus
}

// RenewalChecker fails once any renewal task has ended with an error, since
// its client will stop being renewed and eventually lose its token.
type RenewalChecker struct {
	tasks TaskSource
}

func NewRenewalChecker(tasks TaskSource) *RenewalChecker {
	return &RenewalChecker{tasks: tasks}
}

func (c *RenewalChecker) Check() (*CheckResult, error) {
	if c.tasks == nil {
		return nil, fmt.Errorf("no task source configured")
	}

	snapshot := c.tasks.Snapshot()

	var failed []string
	for _, task := range snapshot {
		if task.State == vault.TaskFailed {
			failed = append(failed, fmt.Sprintf("task %d (%s): %s", task.ID, task.Address, task.LastError))
		}
	}

	if len(failed) > 0 {
		return &CheckResult{
			Success: false,
			Error:   fmt.Errorf("token renewal failed: %s", strings.Join(failed, "; ")),
			Tasks:   len(snapshot),
		}, nil
	}

	return &CheckResult{Success: true, Tasks: len(snapshot)}, nil
}
