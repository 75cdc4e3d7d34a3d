package buildorch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mpcops/node-provisioning/interfaces"
	"github.com/mpcops/node-provisioning/poll"
)

const (
	// DefaultPollInterval is how often completion is checked.
	DefaultPollInterval = 30 * time.Second

	// DefaultDeadline bounds total polling for a single build, independent of
	// the per-poll interval.
	DefaultDeadline = 2 * time.Hour

	// maxConsecutiveTransient bounds how many status checks in a row may fail
	// with a transient infrastructure error before the failure escalates. A
	// successful check resets the count.
	maxConsecutiveTransient = 5
)

// Orchestrator drives a remote build through the provisioning lifecycle. It
// is stateless between invocations: the physical resource identifier carries
// everything IsComplete needs, so the calling system may restart or re-invoke
// arbitrarily.
type Orchestrator struct {
	Service  BuildService
	Interval time.Duration
	Deadline time.Duration
	Log      *slog.Logger
}

// NewOrchestrator creates an orchestrator with the default poll interval and
// deadline.
func NewOrchestrator(service BuildService, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		Service:  service,
		Interval: DefaultPollInterval,
		Deadline: DefaultDeadline,
		Log:      log,
	}
}

// OnEvent handles a lifecycle request. Delete returns immediately with the
// existing identifier: a build in flight is abandoned, not cancelled. Create
// and update submit a new build and return its identifier as the tracking
// token.
func (o *Orchestrator) OnEvent(ctx context.Context, ev Event) (*EventResponse, error) {
	switch ev.RequestType {
	case RequestDelete:
		o.Log.Info("delete requested, abandoning remote build", slog.String("build_id", ev.PhysicalResourceID))
		return &EventResponse{PhysicalResourceID: ev.PhysicalResourceID}, nil
	case RequestCreate, RequestUpdate:
		if ev.Properties.Project == "" {
			return nil, fmt.Errorf("%w: build request has no project", interfaces.ErrMalformedInput)
		}
		id, err := o.Service.Start(ctx, ev.Properties)
		if err != nil {
			return nil, err
		}
		return &EventResponse{
			PhysicalResourceID: id,
			Data:               map[string]string{"project": ev.Properties.Project},
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown request type %q", interfaces.ErrMalformedInput, ev.RequestType)
	}
}

// IsComplete reports whether the build identified by the event's physical
// resource identifier has finished. Delete requests are always complete. A
// terminal status other than SUCCEEDED is raised as an error naming the
// status so it propagates as a provisioning failure.
func (o *Orchestrator) IsComplete(ctx context.Context, ev Event) (*CompletionResponse, error) {
	if ev.RequestType == RequestDelete {
		return &CompletionResponse{Complete: true}, nil
	}

	status, err := o.Service.Status(ctx, ev.PhysicalResourceID)
	if err != nil {
		return nil, err
	}
	if !status.Terminal() {
		o.Log.Debug("remote build still in progress",
			slog.String("build_id", ev.PhysicalResourceID), slog.String("status", status.String()))
		return &CompletionResponse{Complete: false}, nil
	}
	if status != interfaces.BuildSucceeded {
		return nil, fmt.Errorf("%w: build %s finished with status %s",
			interfaces.ErrRemoteOperationFailed, ev.PhysicalResourceID, status)
	}

	o.Log.Info("remote build succeeded", slog.String("build_id", ev.PhysicalResourceID))
	return &CompletionResponse{Complete: true}, nil
}

// Await runs the full lifecycle in-process: submit the build, then poll
// IsComplete until it completes, fails, or the overall deadline expires.
// Exceeding the deadline is a distinct failure from a reported terminal
// status.
func (o *Orchestrator) Await(ctx context.Context, ev Event) (*EventResponse, error) {
	resp, err := o.OnEvent(ctx, ev)
	if err != nil {
		return nil, err
	}
	if ev.RequestType == RequestDelete {
		return resp, nil
	}

	tracked := ev
	tracked.PhysicalResourceID = resp.PhysicalResourceID

	transient := 0
	err = poll.Until(ctx, poll.Config{Interval: o.Interval, Deadline: o.Deadline}, func(ctx context.Context) (bool, error) {
		done, err := o.IsComplete(ctx, tracked)
		if err != nil {
			// A throttled or momentarily unreachable build service must not
			// fail a multi-hour poll on a single blip.
			if errors.Is(err, interfaces.ErrTransientInfra) && transient < maxConsecutiveTransient {
				transient++
				o.Log.Warn("build status check failed, will retry",
					slog.String("build_id", tracked.PhysicalResourceID),
					slog.Int("consecutive_failures", transient), "err", err)
				return false, nil
			}
			return false, err
		}
		transient = 0
		return done.Complete, nil
	})
	if err != nil {
		if errors.Is(err, poll.ErrBudgetExceeded) {
			return nil, fmt.Errorf("%w: build %s did not finish within %s",
				interfaces.ErrProvisioningTimeout, resp.PhysicalResourceID, o.Deadline)
		}
		return nil, err
	}
	return resp, nil
}
