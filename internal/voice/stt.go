package voice

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "log/slog"

	"github.com/go-audio/wav"
	openai "github.com/openai/openai-go/v3"
	"github.com/spf13/afero"
)

const (
	micSampleRate = 48000
	micChannels   = 1
	micFormat     = "S16_LE"
	micDuration   = 5 * time.Second

	// Anything smaller than this is silence from the capture chain.
	minAudioBytes = 1000
)

// Listen records a fixed-duration take from the microphone and transcribes
// it. Returns ErrNoSpeech when the take is too small or the transcript too
// short to be real speech.
func (e *Engine) Listen(ctx context.Context) (string, error) {
	if !e.hasKey {
		return "", ErrNoAPIKey
	}
	if !e.listening.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	e.wg.Add(1)
	defer func() {
		e.listening.Store(false)
		e.wg.Done()
	}()

	tmp, err := afero.TempFile(e.fs, "", "alexterm-rec-*.wav")
	if err != nil {
		return "", fmt.Errorf("temp file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer e.fs.Remove(path)

	if err := e.record(ctx, path); err != nil {
		return "", err
	}
	if err := e.checkRecording(path); err != nil {
		return "", err
	}

	f, err := e.fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	text, err := e.scribe.Transcribe(ctx, f)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}

	text = strings.TrimSpace(text)
	if len([]rune(text)) < 2 {
		return "", ErrNoSpeech
	}
	return text, nil
}

func (e *Engine) record(ctx context.Context, path string) error {
	rctx, cancel := context.WithTimeout(ctx, micDuration+3*time.Second)
	defer cancel()

	secs := int(micDuration / time.Second)
	cmd := execCommand(rctx, "arecord",
		"-D", e.mic,
		"-f", micFormat,
		"-r", strconv.Itoa(micSampleRate),
		"-c", strconv.Itoa(micChannels),
		"-d", strconv.Itoa(secs),
		path,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("recording failed: %s", strings.TrimSpace(string(out)))
	}
	return nil
}

// checkRecording filters out takes that cannot contain speech: missing or
// near-empty files, and WAV data that decodes to zero duration.
func (e *Engine) checkRecording(path string) error {
	info, err := e.fs.Stat(path)
	if err != nil || info.Size() < minAudioBytes {
		return ErrNoSpeech
	}

	f, err := e.fs.Open(path)
	if err != nil {
		return ErrNoSpeech
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dur, err := dec.Duration()
	if err != nil || dur <= 0 {
		log.Debug("recording failed wav sanity check", "err", err)
		return ErrNoSpeech
	}
	return nil
}

type openaiTranscriber struct {
	client openai.Client
}

func (t *openaiTranscriber) Transcribe(ctx context.Context, audio afero.File) (string, error) {
	resp, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model:    openai.AudioModelWhisper1,
		File:     audio,
		Language: openai.String("en"),
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
