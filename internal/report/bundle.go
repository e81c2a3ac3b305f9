package report

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Bundle is the rendered CSV text of all three reports for one range,
// as attached to the automated export.
type Bundle struct {
	Attendance string
	Meeting    string
	Checkins   string
}

// GenerateBundle runs the three builders concurrently over the same
// immutable range and joins the results. The builders are independent
// pure projections, so the fan-out needs no coordination beyond the
// join; any failure cancels the rest and fails the whole bundle.
func (e *Engine) GenerateBundle(ctx context.Context, r Range, threshold int) (*Bundle, error) {
	var bundle Bundle
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rep, err := e.AttendanceReport(ctx, r, threshold)
		if err != nil {
			return err
		}
		bundle.Attendance = rep.CSV()
		return nil
	})
	g.Go(func() error {
		rep, err := e.MeetingReport(ctx, r, threshold)
		if err != nil {
			return err
		}
		bundle.Meeting = rep.CSV()
		return nil
	})
	g.Go(func() error {
		rep, err := e.CheckinDetail(ctx, r, threshold)
		if err != nil {
			return err
		}
		bundle.Checkins = rep.CSV()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &bundle, nil
}
