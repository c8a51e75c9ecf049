// internal/audio/output.go
// Package audio drives the playback device that tones are rendered to.
package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog"
)

var (
	ErrNotInitialized = errors.New("audio output not initialized")
	ErrAlreadyRunning = errors.New("audio output already running")
	ErrNotRunning     = errors.New("audio output not running")
)

// Config holds audio playback configuration
type Config struct {
	DeviceIndex int    // -1 for default device
	SampleRate  uint32 // e.g., 48000
	Channels    uint32 // 1 for mono, 2 for stereo
	BufferSize  uint32 // frames per callback
}

// DefaultConfig returns sensible defaults for tone playback
func DefaultConfig() Config {
	return Config{
		DeviceIndex: -1,
		SampleRate:  48000,
		Channels:    1,
		BufferSize:  512,
	}
}

// Voice is a finite mono sample source. Read fills buf and returns the number
// of samples written; a short count means the voice is exhausted.
type Voice interface {
	Read(buf []float32) int
}

// slot holds the single voice currently routed to the device.
type slot struct {
	voice Voice
	done  chan struct{}
}

// Output plays voices on a playback device. At most one voice sounds at a time.
type Output struct {
	config  Config
	log     zerolog.Logger
	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	running atomic.Bool
	mu      sync.Mutex // guards ctx, device and current
	current *slot

	// scratch is only touched from the device callback
	scratch []float32
}

// New creates a new audio output instance
func New(cfg Config, log zerolog.Logger) *Output {
	return &Output{
		config: cfg,
		log:    log.With().Str("component", "audio").Logger(),
	}
}

// SampleRate returns the configured device sample rate in Hz.
func (o *Output) SampleRate() float64 {
	return float64(o.config.SampleRate)
}

// Init initializes the audio backend
func (o *Output) Init() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("init audio context: %w", err)
	}
	o.ctx = ctx
	o.log.Debug().Msg("Audio context initialized")
	return nil
}

// ListDevices returns available playback devices
func (o *Output) ListDevices() ([]malgo.DeviceInfo, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.listDevices()
}

func (o *Output) listDevices() ([]malgo.DeviceInfo, error) {
	if o.ctx == nil {
		return nil, ErrNotInitialized
	}
	infos, err := o.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	return infos, nil
}

// Start opens the playback device and begins pulling samples. The device is
// stopped when ctx is cancelled.
func (o *Output) Start(ctx context.Context) error {
	if o.running.Load() {
		return ErrAlreadyRunning
	}

	o.mu.Lock()
	if o.ctx == nil {
		o.mu.Unlock()
		return ErrNotInitialized
	}
	audioCtx := o.ctx
	var devices []malgo.DeviceInfo
	var err error
	if o.config.DeviceIndex >= 0 {
		devices, err = o.listDevices()
	}
	o.mu.Unlock()
	if err != nil {
		return err
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.SampleRate = o.config.SampleRate
	deviceConfig.PeriodSizeInFrames = o.config.BufferSize
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = o.config.Channels

	// Select specific device if requested
	if o.config.DeviceIndex >= 0 {
		if o.config.DeviceIndex >= len(devices) {
			return fmt.Errorf("device index %d out of range (have %d devices)",
				o.config.DeviceIndex, len(devices))
		}
		deviceConfig.Playback.DeviceID = devices[o.config.DeviceIndex].ID.Pointer()
	}

	callbacks := malgo.DeviceCallbacks{
		Data: o.onSendFrames,
	}

	device, err := malgo.InitDevice(audioCtx.Context, deviceConfig, callbacks)
	if err != nil {
		return fmt.Errorf("init device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("start device: %w", err)
	}

	o.mu.Lock()
	o.device = device
	o.running.Store(true)
	o.mu.Unlock()

	o.log.Debug().
		Uint32("sample_rate", o.config.SampleRate).
		Uint32("channels", o.config.Channels).
		Int("device_index", o.config.DeviceIndex).
		Msg("Playback device started")

	// Wait for context cancellation
	go func() {
		<-ctx.Done()
		_ = o.Stop()
	}()

	return nil
}

// onSendFrames is the device data callback.
func (o *Output) onSendFrames(outputSamples, _ []byte, frameCount uint32) {
	frames := int(frameCount)
	if cap(o.scratch) < frames {
		o.scratch = make([]float32, frames)
	}
	mono := o.scratch[:frames]
	o.fill(mono)

	channels := int(o.config.Channels)
	if channels < 1 {
		channels = 1
	}
	for i, v := range mono {
		for ch := 0; ch < channels; ch++ {
			offset := (i*channels + ch) * 4
			if offset+4 > len(outputSamples) {
				return
			}
			putFloat32(outputSamples[offset:], v)
		}
	}
}

// fill renders the current voice into buf, padding with silence. When the voice
// runs out it is released and its completion channel closed.
func (o *Output) fill(buf []float32) {
	o.mu.Lock()
	defer o.mu.Unlock()

	n := 0
	if o.current != nil {
		n = o.current.voice.Read(buf)
		if n < len(buf) {
			close(o.current.done)
			o.current = nil
		}
	}
	clear(buf[n:])
}

// Attach routes v to the device and returns a channel closed once v has been
// played to the end or detached. A voice already attached is cut off.
func (o *Output) Attach(v Voice) <-chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current != nil {
		close(o.current.done)
	}
	o.current = &slot{voice: v, done: make(chan struct{})}
	return o.current.done
}

// Detach silences v immediately if it is still attached.
func (o *Output) Detach(v Voice) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current != nil && o.current.voice == v {
		close(o.current.done)
		o.current = nil
	}
}

// Ready returns nil while the device is running and able to play voices.
func (o *Output) Ready() error {
	if !o.running.Load() {
		return ErrNotRunning
	}
	return nil
}

// Stop stops playback. Any attached voice is released.
func (o *Output) Stop() error {
	o.mu.Lock()
	if !o.running.Load() {
		o.mu.Unlock()
		return ErrNotRunning
	}
	device := o.device
	o.device = nil
	if o.current != nil {
		close(o.current.done)
		o.current = nil
	}
	o.running.Store(false)
	o.mu.Unlock()

	// The device waits for an in-flight callback, which needs o.mu
	if device != nil {
		_ = device.Stop()
		device.Uninit()
	}

	o.log.Debug().Msg("Playback device stopped")
	return nil
}

// Close releases all audio resources
func (o *Output) Close() error {
	if o.running.Load() {
		_ = o.Stop()
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ctx != nil {
		if err := o.ctx.Uninit(); err != nil {
			return fmt.Errorf("uninit context: %w", err)
		}
		o.ctx.Free()
		o.ctx = nil
	}
	return nil
}

// putFloat32 writes v to dst as a little-endian IEEE 754 value
func putFloat32(dst []byte, v float32) {
	bits := *(*uint32)(unsafe.Pointer(&v))
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
}
