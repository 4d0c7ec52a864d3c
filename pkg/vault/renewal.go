// -------------------------------------------------------------------------------
// vault-bootstrap - Token Renewal
//
// Background renewal of a client's token lease. One detached task per
// provisioned client: look the token up once, then renew it on a fixed
// interval for as long as the process runs. A failed renewal ends the task.
// -------------------------------------------------------------------------------

package vault

// -------------------------------------------------------------------------
// IMPORTS
// -------------------------------------------------------------------------

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultRenewalInterval must stay well below the server's default token TTL.
const DefaultRenewalInterval = 45 * time.Minute

// -------------------------------------------------------------------------
// INTERFACES
// -------------------------------------------------------------------------

// Observer receives client and renewal events, typically for metrics.
type Observer interface {
	ClientCreated(kind AuthKind)
	RenewalSucceeded(at time.Time)
	RenewalFailed()
}

type noopObserver struct{}

func (noopObserver) ClientCreated(AuthKind) {}
func (noopObserver) RenewalSucceeded(time.Time) {}
func (noopObserver) RenewalFailed() {}

// -------------------------------------------------------------------------
// TYPES
// -------------------------------------------------------------------------

// Renewer runs token renewal tasks.
type Renewer struct {
	interval time.Duration
	tasks    *TaskRegistry
	observer Observer

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// -------------------------------------------------------------------------
// CONSTRUCTOR
// -------------------------------------------------------------------------

// NewRenewer creates a Renewer that records its tasks in tasks and reports
// to observer. Either may be nil.
func NewRenewer(tasks *TaskRegistry, observer Observer) *Renewer {
	if tasks == nil {
		tasks = NewTaskRegistry()
	}
	if observer == nil {
		observer = noopObserver{}
	}

	return &Renewer{
		interval: DefaultRenewalInterval,
		tasks:    tasks,
		observer: observer,
		sleep:    sleepContext,
		now:      time.Now,
	}
}

// -------------------------------------------------------------------------
// PUBLIC METHODS
// -------------------------------------------------------------------------

// Tasks returns the registry the renewer records its tasks in.
func (r *Renewer) Tasks() *TaskRegistry {
	return r.tasks
}

// Start spawns a detached renewal task for client and returns its task ID.
// The task is not cancellable.
func (r *Renewer) Start(client *Client) uint64 {
	return r.start(client, client.Address(), client.AuthKind())
}

// Run looks up the session's token and, if it is renewable, renews it every
// interval until ctx is done or a renewal fails. A token that cannot be
// looked up or is not renewable is not an error.
func (r *Renewer) Run(ctx context.Context, session Session, id uint64) error {
	secret, err := session.LookupSelf(ctx)
	if err != nil {
		slog.Debug("Token lookup failed, not renewing", "task", id, "error", err)
		r.tasks.setState(id, TaskInactive)
		return nil
	}

	renewable, err := secret.TokenIsRenewable()
	if err != nil || !renewable {
		slog.Debug("Token is not renewable, not renewing", "task", id)
		r.tasks.setState(id, TaskInactive)
		return nil
	}

	slog.Info("Token renewal loop started", "task", id, "interval", r.interval)
	r.tasks.setState(id, TaskRenewing)

	for {
		if _, err := session.RenewSelf(ctx); err != nil {
			r.observer.RenewalFailed()
			return fmt.Errorf("failed to renew token: %w", err)
		}

		now := r.now()
		r.observer.RenewalSucceeded(now)
		r.tasks.recordRenewal(id, now)

		if err := r.sleep(ctx, r.interval); err != nil {
			r.tasks.setState(id, TaskStopped)
			return nil
		}
	}
}

// -------------------------------------------------------------------------
// PRIVATE METHODS
// -------------------------------------------------------------------------

// start registers and launches a task. Errors and panics end only the task.
func (r *Renewer) start(session Session, address string, kind AuthKind) uint64 {
	id := r.tasks.register(address, kind, r.now())

	go func() {
		defer func() {
			if p := recover(); p != nil {
				slog.Error("Token renewal task panicked", "task", id, "address", address, "panic", p)
				r.tasks.recordFailure(id, fmt.Errorf("panic: %v", p))
			}
		}()

		if err := r.Run(context.Background(), session, id); err != nil {
			slog.Error("Token renewal stopped", "task", id, "address", address, "error", err)
			r.tasks.recordFailure(id, err)
		}
	}()

	return id
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
