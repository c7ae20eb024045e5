package device

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// SimDetector is an in-process CaptureDevice simulator modeled after a
// streaming area detector with a file-writing plugin. While armed it
// accumulates frames at a fixed rate, and WriteFile produces a real file on
// disk after a short asynchronous write latency.
//
// The simulator enforces the arm/disarm protocol ordering: starting a capture
// requires the plugin enabled and in ModeCapture, the mode cannot change while
// capturing, and a file cannot be written while a capture is active.
type SimDetector struct {
	name         string
	dir          string
	framePeriod  time.Duration
	writeLatency time.Duration

	mu           sync.Mutex
	enabled      bool
	mode         CaptureMode
	maxFrames    int
	frames       int
	capturing    bool
	captureStart time.Time
	fileSeq      int
	lastFile     string
	lastFileTime time.Time
	hasResult    bool

	writing atomic.Bool
	writeWg sync.WaitGroup
}

// SimDetectorOption customizes a SimDetector.
type SimDetectorOption func(*SimDetector)

// WithDataDir sets the directory the simulator writes files into.
// Defaults to the OS temp directory.
func WithDataDir(dir string) SimDetectorOption {
	return func(d *SimDetector) {
		d.dir = dir
	}
}

// WithFramePeriod sets the simulated time per frame while capturing.
func WithFramePeriod(p time.Duration) SimDetectorOption {
	return func(d *SimDetector) {
		if p > 0 {
			d.framePeriod = p
		}
	}
}

// WithWriteLatency sets how long a simulated file write takes.
func WithWriteLatency(l time.Duration) SimDetectorOption {
	return func(d *SimDetector) {
		if l > 0 {
			d.writeLatency = l
		}
	}
}

// NewSimDetector creates a simulated capture device with the given name.
// The name prefixes the result field name, matching the convention of
// control-system device records ("<name>_full_file_name").
func NewSimDetector(name string, opts ...SimDetectorOption) *SimDetector {
	d := &SimDetector{
		name:         name,
		dir:          os.TempDir(),
		framePeriod:  time.Millisecond,
		writeLatency: 10 * time.Millisecond,
		mode:         ModeSingle,
		maxFrames:    1,
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

var _ CaptureDevice = (*SimDetector)(nil)

// ResetCounter resets the accumulated frame counter to zero.
func (d *SimDetector) ResetCounter() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.frames = 0

	return nil
}

// Enable enables the streaming plugin.
func (d *SimDetector) Enable() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.enabled = true

	return nil
}

// Disable disables the streaming plugin. It fails while a capture is active.
func (d *SimDetector) Disable() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.capturing {
		return ErrCaptureActive
	}
	d.enabled = false

	return nil
}

// SetMode selects the capture mode. The mode cannot change mid-capture.
func (d *SimDetector) SetMode(mode CaptureMode) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.capturing {
		return ErrCaptureActive
	}
	d.mode = mode

	return nil
}

// SetMaxFrames sets the maximum number of frames to accumulate.
func (d *SimDetector) SetMaxFrames(n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n < 1 {
		return fmt.Errorf("invalid max frames: %d", n)
	}
	if d.capturing {
		return ErrCaptureActive
	}
	d.maxFrames = n

	return nil
}

// StartCapture starts accumulating frames. The plugin must be enabled and in
// ModeCapture.
func (d *SimDetector) StartCapture() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.enabled {
		return ErrDisabled
	}
	if d.mode != ModeCapture {
		return ErrWrongMode
	}
	if d.capturing {
		return ErrCaptureActive
	}

	d.capturing = true
	d.captureStart = time.Now()

	return nil
}

// StopCapture stops accumulating frames and latches the frame count.
func (d *SimDetector) StopCapture() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.capturing {
		return ErrNotCapturing
	}

	d.capturing = false
	captured := int(time.Since(d.captureStart)/d.framePeriod) + 1
	d.frames += captured
	if d.frames > d.maxFrames {
		d.frames = d.maxFrames
	}

	return nil
}

// WriteFile writes the accumulated frames to a file in the data directory.
// The write completes asynchronously; poll IsWriting until it reports false.
func (d *SimDetector) WriteFile() error {
	d.mu.Lock()

	if !d.enabled {
		d.mu.Unlock()
		return ErrDisabled
	}
	if d.capturing {
		d.mu.Unlock()
		return ErrCaptureActive
	}

	d.fileSeq++
	path := filepath.Join(d.dir, fmt.Sprintf("%s_%04d.h5", d.name, d.fileSeq))
	frames := d.frames
	d.mu.Unlock()

	d.writing.Store(true)
	d.writeWg.Add(1)
	go func() {
		defer d.writeWg.Done()

		time.Sleep(d.writeLatency)

		// 64 bytes per frame stands in for real image payloads
		payload := make([]byte, 64*max(frames, 1))
		err := os.WriteFile(path, payload, 0o644)

		d.mu.Lock()
		if err == nil {
			d.lastFile = path
			d.lastFileTime = time.Now()
			d.hasResult = true
		}
		d.mu.Unlock()

		d.writing.Store(false)
	}()

	return nil
}

// IsWriting reports whether a file write is in progress.
func (d *SimDetector) IsWriting() (bool, error) {
	return d.writing.Load(), nil
}

// ReadResult returns the file path of the last completed write.
func (d *SimDetector) ReadResult() (map[string]Reading, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.hasResult {
		return nil, ErrNoResult
	}

	return map[string]Reading{
		d.fieldName(): {Value: d.lastFile, Timestamp: d.lastFileTime},
	}, nil
}

// DescribeResult returns the schema of the fields ReadResult produces.
func (d *SimDetector) DescribeResult() map[string]FieldDescriptor {
	return map[string]FieldDescriptor{
		d.fieldName(): {
			Source: fmt.Sprintf("SIM:%s.FullFileName_RBV", d.name),
			Dtype:  "string",
			Shape:  []int{},
		},
	}
}

// FrameCount returns the latched frame counter.
func (d *SimDetector) FrameCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.frames
}

// Enabled reports whether the streaming plugin is enabled.
func (d *SimDetector) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.enabled
}

// Mode returns the current capture mode.
func (d *SimDetector) Mode() CaptureMode {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.mode
}

// MaxFrames returns the configured maximum frame count.
func (d *SimDetector) MaxFrames() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.maxFrames
}

// waitWrites blocks until all pending file writes finish. Test helper.
func (d *SimDetector) waitWrites() {
	d.writeWg.Wait()
}

func (d *SimDetector) fieldName() string {
	return d.name + "_full_file_name"
}
