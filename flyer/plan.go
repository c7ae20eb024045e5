package flyer

import (
	"context"
	"fmt"
)

// Fly runs the full three-phase protocol over one or more flyers: kickoff
// all, complete all, collect all. The returned record slices are aligned with
// the flyers argument.
//
// The context bounds the waiting phases. If any flyer fails, Fly returns the
// first error; flyers already kicked off still run to completion in the
// background.
func Fly(ctx context.Context, flyers ...*SpinFlyer) ([][]Record, error) {
	if len(flyers) == 0 {
		return nil, fmt.Errorf("no flyers given")
	}

	statuses := make([]*CompletionStatus, len(flyers))
	for i, f := range flyers {
		status, err := f.Kickoff()
		if err != nil {
			return nil, fmt.Errorf("kickoff flyer %d: %w", i, err)
		}
		statuses[i] = status
	}

	for i, f := range flyers {
		if _, err := f.Complete(ctx); err != nil {
			return nil, fmt.Errorf("complete flyer %d: %w", i, err)
		}
		if err := statuses[i].Wait(ctx); err != nil {
			return nil, fmt.Errorf("flyer %d: %w", i, err)
		}
	}

	records := make([][]Record, len(flyers))
	for i, f := range flyers {
		it, err := f.Collect()
		if err != nil {
			return nil, fmt.Errorf("collect flyer %d: %w", i, err)
		}
		records[i] = it.Drain()
	}

	return records, nil
}
