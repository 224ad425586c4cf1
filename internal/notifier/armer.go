package notifier

import (
	"context"
	"errors"

	"github.com/julianstephens/studyclock/internal/logger"
	"github.com/julianstephens/studyclock/internal/models"
)

// Armer arms and cancels recurring reminder triggers. Implementations keep
// at most one armed trigger per identifier; cancelling an unknown identifier
// is not an error.
type Armer interface {
	Arm(ctx context.Context, trigger models.Trigger) error
	Cancel(ctx context.Context, identifier string) error
	CancelAll(ctx context.Context) error
}

// LogArmer only logs what it would arm.
type LogArmer struct{}

func (LogArmer) Arm(_ context.Context, t models.Trigger) error {
	logger.Info("Would arm trigger", "id", t.Identifier, "schedule", t.FormatSchedule())
	return nil
}

func (LogArmer) Cancel(_ context.Context, identifier string) error {
	logger.Info("Would cancel trigger", "id", identifier)
	return nil
}

func (LogArmer) CancelAll(context.Context) error {
	logger.Info("Would cancel all triggers")
	return nil
}

// Multi fans each call out to every armer and joins their errors.
type Multi []Armer

func (m Multi) Arm(ctx context.Context, t models.Trigger) error {
	var errs []error
	for _, a := range m {
		errs = append(errs, a.Arm(ctx, t))
	}
	return errors.Join(errs...)
}

func (m Multi) Cancel(ctx context.Context, identifier string) error {
	var errs []error
	for _, a := range m {
		errs = append(errs, a.Cancel(ctx, identifier))
	}
	return errors.Join(errs...)
}

func (m Multi) CancelAll(ctx context.Context) error {
	var errs []error
	for _, a := range m {
		errs = append(errs, a.CancelAll(ctx))
	}
	return errors.Join(errs...)
}
