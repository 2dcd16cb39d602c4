package ctl

import (
	"context"
	"time"

	"github.com/rowctl/rowctl/internal/idl"
)

// pollInterval is how long the driver sleeps between retry attempts
// while waiting for the IDL to report a server-side change, in place of
// a dedicated blocking "wait for update" primitive (spec.md §5's
// driver.loop blocks until the IDL reports an update; this interpreter's
// idl.Client contract exposes Refresh instead, so the driver polls it).
const pollInterval = 200 * time.Millisecond

// Driver runs one compiled command stream against an IDL client,
// implementing the pre/run/retry/commit/post loop of spec.md §4.I.
type Driver struct {
	Interpreter *Interpreter
	IDL         idl.Client
	Logger      Logger
}

// Run executes invocations to completion, returning the rendered
// output. timeout, if positive, bounds the whole retry loop (spec.md
// §4.R's --timeout supplement); zero means unbounded, matching §5's
// "no timeout in the core" default.
func (d *Driver) Run(ctx context.Context, invocations []*Invocation, oneline, noWait bool, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ctlCtx := d.Interpreter.newContext(d.IDL, d.Logger, oneline, noWait)

	for _, inv := range invocations {
		if inv.Command.Pre == nil {
			continue
		}
		if err := inv.Command.Pre(ctlCtx, inv); err != nil {
			return "", fatal(err)
		}
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", fatal(&EnvironmentError{Msg: "wait-until timed out: " + err.Error()})
		}

		if err := d.IDL.Refresh(ctx); err != nil {
			return "", fatal(&EnvironmentError{Msg: err.Error()})
		}
		txn, err := d.IDL.Begin(ctx)
		if err != nil {
			return "", fatal(&EnvironmentError{Msg: err.Error()})
		}

		ctlCtx.resetAttempt()
		ctlCtx.Txn = txn

		runErr := d.runOnce(ctlCtx, invocations)
		if runErr != nil {
			_ = txn.Rollback(ctx)
			return "", fatal(runErr)
		}

		if ctlCtx.TryAgain {
			_ = txn.Rollback(ctx)
			if noWait {
				return "", fatal(&EnvironmentError{Msg: "condition not met and --no-wait was given"})
			}
			d.Logger.LogRetry(attempt)
			if err := sleepCtx(ctx, pollInterval); err != nil {
				return "", fatal(&EnvironmentError{Msg: "wait-until timed out: " + err.Error()})
			}
			continue
		}

		outcome, commitErr := txn.Commit(ctx)
		switch outcome {
		case idl.CommitOK:
			for _, inv := range invocations {
				if inv.Command.Post == nil {
					continue
				}
				if err := inv.Command.Post(ctlCtx, inv); err != nil {
					return "", fatal(err)
				}
			}
			return Render(ctlCtx), nil
		case idl.CommitRetry:
			d.Logger.LogRetry(attempt)
			continue
		default:
			return "", fatal(&EnvironmentError{Msg: commitErr.Error()})
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (d *Driver) runOnce(ctlCtx *CtlContext, invocations []*Invocation) error {
	for _, inv := range invocations {
		ctlCtx.beginCommandOutput()
		d.Logger.LogCommandStart(inv.Command.Name, inv.Args)
		if err := inv.Command.Run(ctlCtx, inv); err != nil {
			return err
		}
		d.Logger.LogCommandComplete(inv.Command.Name)
		if ctlCtx.TryAgain {
			return nil
		}
	}
	return nil
}
