package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	log "log/slog"

	openai "github.com/openai/openai-go/v3"
	"github.com/spf13/afero"
)

const (
	// The speech endpoint rejects inputs beyond this length.
	maxSpeechInput = 4096

	playTimeout = 60 * time.Second
	duckFade    = 150 * time.Millisecond
)

// Speak synthesizes text and plays it. Overlapping calls are rejected with
// ErrBusy so two replies cannot talk over each other.
func (e *Engine) Speak(ctx context.Context, text string) error {
	if !e.hasKey {
		return ErrNoAPIKey
	}
	if text == "" {
		return nil
	}
	if !e.speaking.CompareAndSwap(false, true) {
		return ErrBusy
	}
	e.wg.Add(1)
	defer func() {
		e.speaking.Store(false)
		e.wg.Done()
	}()

	if r := []rune(text); len(r) > maxSpeechInput {
		text = string(r[:maxSpeechInput])
	}

	audio, err := e.synth.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}

	tmp, err := afero.TempFile(e.fs, "", "alexterm-tts-*.mp3")
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	path := tmp.Name()
	defer e.fs.Remove(path)

	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		return fmt.Errorf("write audio: %w", err)
	}
	tmp.Close()

	// Route to the Bluetooth speaker when one is around.
	if sink := DetectBluetoothSink(ctx); sink != "" {
		SetDefaultSink(ctx, sink)
	}

	if e.duck != nil {
		if err := e.duck.DuckOthers(ctx, 0.3, duckFade); err != nil {
			log.Debug("ducking failed", "err", err)
		}
		defer func() {
			if err := e.duck.UnduckOthers(context.Background(), duckFade); err != nil {
				log.Debug("unducking failed", "err", err)
			}
		}()
	}

	return playFile(ctx, path)
}

// playFile plays an mp3 through mpg123, falling back to ffplay. Only a
// missing fallback player is a hard "no player" condition.
func playFile(ctx context.Context, path string) error {
	pctx, cancel := context.WithTimeout(ctx, playTimeout)
	defer cancel()

	err := execCommand(pctx, "mpg123", "-q", path).Run()
	if err == nil {
		return nil
	}
	log.Debug("mpg123 playback failed, trying ffplay", "err", err)

	err = execCommand(pctx, "ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", path).Run()
	if err == nil {
		return nil
	}
	if errors.Is(err, exec.ErrNotFound) {
		return ErrNoPlayer
	}
	return fmt.Errorf("ffplay: %w", err)
}

type openaiSynthesizer struct {
	client openai.Client
}

func (s *openaiSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model: openai.SpeechModelTTS1,
		Voice: openai.AudioSpeechNewParamsVoice("onyx"),
		Input: text,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
