// Package voice implements text-to-speech and speech-to-text for the
// terminal. Synthesis and transcription go through the OpenAI API; recording
// and playback go through external command-line tools.
package voice

import (
	"context"
	"errors"
	"net/http"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/spf13/afero"
)

var (
	ErrNoAPIKey = errors.New("OpenAI API key not configured")
	ErrNoPlayer = errors.New("no audio player found (install mpg123 or ffmpeg)")
	ErrNoSpeech = errors.New("no speech detected")
	ErrBusy     = errors.New("voice operation already running")
)

// execCommand is swapped out in tests.
var execCommand = exec.CommandContext

// Config wires an Engine.
type Config struct {
	FS         afero.Fs
	APIKey     string
	HTTPClient *http.Client // optional, e.g. a SOCKS client
	MicDevice  string       // ALSA capture device, e.g. "hw:2,0"
	DuckOthers bool         // lower other audio streams while speaking
}

// Engine runs one TTS and one STT operation at a time. The busy flags are
// checked-and-set atomically so back-to-back triggers cannot overlap.
type Engine struct {
	fs     afero.Fs
	synth  synthesizer
	scribe transcriber
	mic    string
	duck   *Ducker

	speaking  atomic.Bool
	listening atomic.Bool
	wg        sync.WaitGroup

	hasKey bool
}

func NewEngine(cfg Config) *Engine {
	fs := cfg.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	mic := cfg.MicDevice
	if mic == "" {
		mic = "hw:2,0"
	}

	e := &Engine{fs: fs, mic: mic, hasKey: cfg.APIKey != ""}
	if cfg.DuckOthers {
		e.duck = NewDucker([]string{"mpg123", "ffplay"}, 20)
	}

	if e.hasKey {
		opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
		if cfg.HTTPClient != nil {
			opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
		}
		client := openai.NewClient(opts...)
		e.synth = &openaiSynthesizer{client: client}
		e.scribe = &openaiTranscriber{client: client}
	}
	return e
}

// Busy reports whether any voice operation is in flight.
func (e *Engine) Busy() bool {
	return e.speaking.Load() || e.listening.Load()
}

// Wait blocks until active voice work finishes or the timeout elapses.
// Returns false on timeout; the work is not forcibly terminated.
func (e *Engine) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

type synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type transcriber interface {
	Transcribe(ctx context.Context, audio afero.File) (string, error)
}
