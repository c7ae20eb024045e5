package flyer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prjemian/flyscan/device"
	"github.com/prjemian/flyscan/internal/pool"
	"github.com/prjemian/flyscan/internal/task"
	"github.com/prjemian/flyscan/logger"
)

// SpinFlyer coordinates one actuator, one capture device, and one busy flag
// through repeatable fly-scan acquisition cycles. It holds non-owning
// references to the hardware interfaces; their lifetime is managed by the
// caller.
//
// A SpinFlyer drives at most one background task at a time: either a single
// command action started by Set, or one spin sequence started by Kickoff.
// Concurrent use of the same hardware handles by another flyer is undefined
// behavior and must be prevented by the caller.
type SpinFlyer struct {
	motor  device.Actuator
	det    device.CaptureDevice
	busy   device.BusyFlag
	cfg    *Config
	logger logger.Logger

	ctx    context.Context
	runner *task.Runner

	state atomicAcqState

	// cmdMu makes the busy-flag check-and-set of Set atomic against
	// concurrent dispatches on the same flyer.
	cmdMu sync.Mutex

	mu         sync.Mutex // guards status, returnPos
	status     *CompletionStatus
	returnPos  float64
	buffer     recordBuffer
	configTime time.Time
}

// New creates a SpinFlyer driving the given hardware interfaces.
//
// The actuator's position at construction time becomes the initial return
// position, so a "return" command is well defined even before the first
// kickoff. The context bounds the lifetime of all background tasks the flyer
// starts.
func New(ctx context.Context, motor device.Actuator, det device.CaptureDevice, busy device.BusyFlag, opts ...Option) (*SpinFlyer, error) {
	if motor == nil {
		return nil, ErrNilActuator
	}
	if det == nil {
		return nil, ErrNilCaptureDevice
	}
	if busy == nil {
		return nil, ErrNilBusyFlag
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	pos, err := motor.Position()
	if err != nil {
		return nil, fmt.Errorf("read actuator position: %w", err)
	}

	f := &SpinFlyer{
		motor:      motor,
		det:        det,
		busy:       busy,
		cfg:        cfg,
		logger:     cfg.Logger(),
		ctx:        ctx,
		runner:     task.NewRunner(ctx, cfg.Logger()),
		returnPos:  pos,
		configTime: time.Now(),
	}

	return f, nil
}

// State returns the current acquisition state.
func (f *SpinFlyer) State() AcqState {
	return f.state.Get()
}

// ReturnPosition returns the position the next "return" command moves to.
func (f *SpinFlyer) ReturnPosition() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.returnPos
}

// Set dispatches an imperative command, case-insensitively one of "taxi",
// "fly", or "return". The action runs on a background task; Set returns a
// CompletionStatus immediately.
//
// If the busy flag currently reads true, Set fails with ErrBusy without
// starting anything. Otherwise the flag is set for the entire duration of the
// action and cleared on every exit path, including failure.
func (f *SpinFlyer) Set(value string) (*CompletionStatus, error) {
	cmd, err := ParseCommand(value)
	if err != nil {
		return nil, err
	}

	f.cmdMu.Lock()
	isBusy, err := f.busy.Get()
	if err != nil {
		f.cmdMu.Unlock()
		return nil, fmt.Errorf("read busy flag: %w", err)
	}
	if isBusy {
		f.cmdMu.Unlock()
		return nil, fmt.Errorf("%w: busy flag is set", ErrBusy)
	}
	if err := f.busy.Set(true); err != nil {
		f.cmdMu.Unlock()
		return nil, fmt.Errorf("set busy flag: %w", err)
	}
	f.cmdMu.Unlock()

	f.logger.Debug("dispatch command", "command", cmd.String())

	status := newCompletionStatus()
	err = f.runner.Run("command-"+cmd.String(), func() error {
		return f.runCommand(cmd)
	}, func(actErr error) {
		// the busy flag is cleared on every exit path, success or failure
		if clrErr := f.busy.Set(false); clrErr != nil {
			f.logger.Error("clear busy flag", "command", cmd.String(), "error", clrErr)
			if actErr == nil {
				actErr = fmt.Errorf("clear busy flag: %w", clrErr)
			}
		}

		f.state.Set(IdleState)

		if actErr != nil {
			f.logger.Error("command failed", "command", cmd.String(), "error", actErr)
		}
		status.resolve(actErr)
	})
	if err != nil {
		_ = f.busy.Set(false)
		return nil, err
	}

	return status, nil
}

func (f *SpinFlyer) runCommand(cmd Command) error {
	switch cmd {
	case CommandTaxi:
		return f.taxi()
	case CommandFly:
		if err := f.arm(); err != nil {
			return err
		}
		if err := f.fly(); err != nil {
			return err
		}

		return f.disarm()
	case CommandReturn:
		return f.returnToStart()
	default:
		return fmt.Errorf("%w, received %q", ErrInvalidCommand, cmd.String())
	}
}

// taxi moves the actuator to the run-up position: far enough before the scan
// start to ramp up to speed.
func (f *SpinFlyer) taxi() error {
	target := f.cfg.StartPosition() + f.cfg.PreStart()

	f.state.Set(TaxiingState)
	f.logger.Debug("taxi", "target", target)

	if err := f.motor.Move(target); err != nil {
		return fmt.Errorf("taxi move to %v: %w", target, err)
	}

	return nil
}

// fly moves the actuator to the finish position. This motion is what the
// capture device streams during.
func (f *SpinFlyer) fly() error {
	target := f.cfg.FinishPosition()

	f.state.Set(FlyingState)
	f.logger.Debug("fly", "target", target)

	if err := f.motor.Move(target); err != nil {
		return fmt.Errorf("fly move to %v: %w", target, err)
	}

	return nil
}

// returnToStart moves the actuator back to the recorded return position.
func (f *SpinFlyer) returnToStart() error {
	f.mu.Lock()
	target := f.returnPos
	f.mu.Unlock()

	f.state.Set(ReturningState)
	f.logger.Debug("return", "target", target)

	if err := f.motor.Move(target); err != nil {
		return fmt.Errorf("return move to %v: %w", target, err)
	}

	return nil
}

// arm prepares the capture device for streaming acquisition. The step order
// is a strict hardware protocol and must not be changed.
func (f *SpinFlyer) arm() error {
	f.state.Set(BusyState)

	if err := f.det.ResetCounter(); err != nil {
		return fmt.Errorf("reset frame counter: %w", err)
	}
	if err := f.det.Enable(); err != nil {
		return fmt.Errorf("enable streaming plugin: %w", err)
	}
	if err := f.det.SetMode(device.ModeCapture); err != nil {
		return fmt.Errorf("set capture mode: %w", err)
	}
	if err := f.det.SetMaxFrames(f.cfg.MaxFrames()); err != nil {
		return fmt.Errorf("set max frames: %w", err)
	}
	if err := f.det.StartCapture(); err != nil {
		return fmt.Errorf("start capture: %w", err)
	}

	return nil
}

// disarm stops the capture, triggers the file write, and restores the capture
// device to its single-frame defaults. The step order is a strict hardware
// protocol and must not be changed.
func (f *SpinFlyer) disarm() error {
	f.state.Set(BusyState)

	if err := f.det.StopCapture(); err != nil {
		return fmt.Errorf("stop capture: %w", err)
	}
	if err := f.det.WriteFile(); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := f.det.SetMode(device.ModeSingle); err != nil {
		return fmt.Errorf("reset capture mode: %w", err)
	}
	if err := f.det.SetMaxFrames(1); err != nil {
		return fmt.Errorf("reset max frames: %w", err)
	}
	if err := f.det.Disable(); err != nil {
		return fmt.Errorf("disable streaming plugin: %w", err)
	}

	return nil
}

// Kickoff starts the spin sequence on a background task and returns its
// CompletionStatus without blocking.
//
// It fails with ErrAlreadyKickedOff while a prior status is outstanding, that
// is, until Collect has consumed the previous run; the existing buffer is not
// touched in that case. Before the background task starts, the result buffer
// is cleared and the actuator's current position is recorded as the return
// position.
func (f *SpinFlyer) Kickoff() (*CompletionStatus, error) {
	f.mu.Lock()
	if f.status != nil {
		f.mu.Unlock()
		return nil, ErrAlreadyKickedOff
	}

	pos, err := f.motor.Position()
	if err != nil {
		f.mu.Unlock()
		return nil, fmt.Errorf("read actuator position: %w", err)
	}

	f.returnPos = pos
	f.buffer.reset()
	status := newCompletionStatus()
	f.status = status
	f.mu.Unlock()

	f.logger.Info("kickoff", "return_position", pos, "num_spins", f.cfg.NumSpins())

	err = f.runner.Run("spinSequence", f.spinSequence, func(actErr error) {
		f.state.Set(IdleState)
		if actErr != nil {
			f.logger.Error("spin sequence failed", "error", actErr)
		}
		status.resolve(actErr)
	})
	if err != nil {
		f.mu.Lock()
		f.status = nil
		f.mu.Unlock()

		return nil, err
	}

	return status, nil
}

// spinSequence runs on a background task, once per kickoff.
func (f *SpinFlyer) spinSequence() error {
	for spin := 1; spin <= f.cfg.NumSpins(); spin++ {
		if err := f.spinOnce(spin); err != nil {
			return fmt.Errorf("spin %d: %w", spin, err)
		}
	}

	// Move back through the command path so the busy interlock is visible to
	// outside observers during the return motion.
	status, err := f.Set("return")
	if err != nil {
		return fmt.Errorf("return after %d spins: %w", f.cfg.NumSpins(), err)
	}

	ctx, cancel := context.WithTimeout(f.ctx, f.cfg.CompleteTimeout())
	defer cancel()

	if err := status.Wait(ctx); err != nil {
		return fmt.Errorf("return after %d spins: %w", f.cfg.NumSpins(), err)
	}

	return nil
}

// spinOnce performs one full acquisition cycle and appends its record.
func (f *SpinFlyer) spinOnce(seqNum int) error {
	if err := f.taxi(); err != nil {
		return err
	}
	if err := f.arm(); err != nil {
		return err
	}
	if err := f.fly(); err != nil {
		return err
	}
	if err := f.disarm(); err != nil {
		return err
	}
	if err := f.waitFileWrite(); err != nil {
		return err
	}

	f.state.Set(BusyState)

	result, err := f.det.ReadResult()
	if err != nil {
		return fmt.Errorf("read capture result: %w", err)
	}

	rec := Record{
		Time:       time.Now(),
		SeqNum:     seqNum,
		Data:       make(map[string]any, len(result)),
		Timestamps: make(map[string]time.Time, len(result)),
	}
	for name, reading := range result {
		rec.Data[name] = reading.Value
		rec.Timestamps[name] = reading.Timestamp
	}

	f.buffer.append(rec)
	f.logger.Debug("spin recorded", "seq_num", seqNum, "fields", len(result))

	return nil
}

// waitFileWrite polls the capture device's write status at the configured
// interval until the file write finishes, bounded by the complete timeout.
func (f *SpinFlyer) waitFileWrite() error {
	f.state.Set(BusyState)

	deadline := time.Now().Add(f.cfg.CompleteTimeout())
	for {
		writing, err := f.det.IsWriting()
		if err != nil {
			return fmt.Errorf("read write status: %w", err)
		}
		if !writing {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: file write still active after %v", ErrWaitTimeout, f.cfg.CompleteTimeout())
		}

		timer := pool.GetTimer(f.cfg.PollInterval())
		select {
		case <-f.ctx.Done():
			pool.PutTimer(timer)
			return f.ctx.Err()
		case <-timer.C:
		}
		pool.PutTimer(timer)
	}
}

// Complete blocks, polling the actuator's moving status at the configured
// interval, until the actuator reports idle, then returns the run's
// CompletionStatus. It fails with ErrNoRunInProgress if no kickoff occurred.
//
// The actuator's idleness is a coarse proxy for "flying has finished"; wait on
// the returned status to observe the definitive resolution.
func (f *SpinFlyer) Complete(ctx context.Context) (*CompletionStatus, error) {
	f.mu.Lock()
	status := f.status
	f.mu.Unlock()

	if status == nil {
		return nil, fmt.Errorf("%w: complete before kickoff", ErrNoRunInProgress)
	}

	for {
		if status.Done() {
			return status, nil
		}

		moving, err := f.motor.IsMoving()
		if err != nil {
			return nil, fmt.Errorf("read moving status: %w", err)
		}
		if !moving {
			return status, nil
		}

		timer := pool.GetTimer(f.cfg.PollInterval())
		select {
		case <-ctx.Done():
			pool.PutTimer(timer)
			return nil, ctx.Err()
		case <-timer.C:
		}
		pool.PutTimer(timer)
	}
}

// Collect consumes the run's buffered records, in insertion order, as a
// finite one-shot iterator.
//
// It fails with ErrNoRunInProgress without a prior kickoff, with ErrNotDone
// while the run is still pending, and with the run's error if it failed. On
// success the stored status is cleared: the records can be collected exactly
// once, and a second Collect without a new Kickoff fails.
func (f *SpinFlyer) Collect() (*RecordIterator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status == nil {
		return nil, fmt.Errorf("%w: collect before kickoff", ErrNoRunInProgress)
	}
	if !f.status.Done() {
		return nil, ErrNotDone
	}
	if err := f.status.Err(); err != nil {
		// clear the failed run so a new kickoff is possible
		f.status = nil
		f.buffer.reset()

		return nil, fmt.Errorf("acquisition failed: %w", err)
	}

	f.status = nil

	return &RecordIterator{records: f.buffer.drainAll()}, nil
}

// DescribeCollect returns the schema of the collected stream: a mapping from
// the stream name to the capture device's field descriptors. It is pure and
// side-effect free.
func (f *SpinFlyer) DescribeCollect() map[string]map[string]device.FieldDescriptor {
	return map[string]map[string]device.FieldDescriptor{
		f.cfg.StreamName(): f.det.DescribeResult(),
	}
}

// ReadConfiguration returns the flyer's acquisition parameters as readings,
// stamped with the construction time.
func (f *SpinFlyer) ReadConfiguration() map[string]device.Reading {
	return map[string]device.Reading{
		"pre_start":       {Value: f.cfg.PreStart(), Timestamp: f.configTime},
		"start_position":  {Value: f.cfg.StartPosition(), Timestamp: f.configTime},
		"finish_position": {Value: f.cfg.FinishPosition(), Timestamp: f.configTime},
		"num_spins":       {Value: f.cfg.NumSpins(), Timestamp: f.configTime},
		"max_frames":      {Value: f.cfg.MaxFrames(), Timestamp: f.configTime},
	}
}

// DescribeConfiguration returns the schema of the fields ReadConfiguration
// produces.
func (f *SpinFlyer) DescribeConfiguration() map[string]device.FieldDescriptor {
	return map[string]device.FieldDescriptor{
		"pre_start":       {Source: "flyer.pre_start", Dtype: "number", Shape: []int{}},
		"start_position":  {Source: "flyer.start_position", Dtype: "number", Shape: []int{}},
		"finish_position": {Source: "flyer.finish_position", Dtype: "number", Shape: []int{}},
		"num_spins":       {Source: "flyer.num_spins", Dtype: "integer", Shape: []int{}},
		"max_frames":      {Source: "flyer.max_frames", Dtype: "integer", Shape: []int{}},
	}
}
