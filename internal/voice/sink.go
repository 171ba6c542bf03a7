package voice

import (
	"context"
	"strings"
	"time"
)

const pactlTimeout = 5 * time.Second

// DetectBluetoothSink finds a Bluetooth audio sink in the PulseAudio /
// PipeWire sink list. Returns "" when there is none or pactl is missing;
// that is not an error, playback just stays on the current default.
func DetectBluetoothSink(ctx context.Context) string {
	pctx, cancel := context.WithTimeout(ctx, pactlTimeout)
	defer cancel()

	out, err := execCommand(pctx, "pactl", "list", "short", "sinks").Output()
	if err != nil {
		return ""
	}
	return parseBluetoothSink(out)
}

// parseBluetoothSink picks the sink name out of `pactl list short sinks`
// output: index, name, driver, format, state, tab separated.
func parseBluetoothSink(out []byte) string {
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if !strings.Contains(strings.ToLower(line), "bluez") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) >= 2 {
			return parts[1]
		}
	}
	return ""
}

// SetDefaultSink switches the system default audio output.
func SetDefaultSink(ctx context.Context, sink string) bool {
	pctx, cancel := context.WithTimeout(ctx, pactlTimeout)
	defer cancel()

	return execCommand(pctx, "pactl", "set-default-sink", sink).Run() == nil
}
