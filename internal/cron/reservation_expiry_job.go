package cron

import (
	"context"
	"fmt"

	"github.com/mehtakaran9/librarium-backend/pkg/logger"
)

// reservationExpirer is the slice of the reservations service the job needs.
type reservationExpirer interface {
	ExpireLapsed(ctx context.Context) (int64, error)
}

// ReservationExpiryJobParams configure the expiry sweep job.
type ReservationExpiryJobParams struct {
	Logger       *logger.Logger
	Reservations reservationExpirer
}

type reservationExpiryJob struct {
	logg         *logger.Logger
	reservations reservationExpirer
}

// NewReservationExpiryJob builds the hourly sweep that cancels holds
// whose pickup window has closed.
func NewReservationExpiryJob(params ReservationExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reservations == nil {
		return nil, fmt.Errorf("reservations service required")
	}
	return &reservationExpiryJob{
		logg:         params.Logger,
		reservations: params.Reservations,
	}, nil
}

func (j *reservationExpiryJob) Name() string { return "reservation-expiry" }

func (j *reservationExpiryJob) Run(ctx context.Context) error {
	expired, err := j.reservations.ExpireLapsed(ctx)
	if err != nil {
		return fmt.Errorf("reservation expiry: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "expired", expired)
	j.logg.Info(logCtx, "reservation expiry sweep complete")
	return nil
}
