package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds everything alexterm reads from the environment.
type Config struct {
	APIBase   string // control API base URL
	APIToken  string // bearer token, optional
	OpenAIKey string // required for voice
	MicDevice string // ALSA capture device for arecord
	ConfigDir string // per-user state directory (~/.alex)
}

// Load reads ~/.env (then ./.env) and the environment, filling in defaults.
func Load(envFile string) Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	if envFile != "" {
		godotenv.Load(envFile)
	}
	godotenv.Load(filepath.Join(home, ".env"))

	base := os.Getenv("ALEX_API_BASE")
	if base == "" {
		base = "http://127.0.0.1:9090"
	}

	mic := os.Getenv("ALEX_MIC_DEVICE")
	if mic == "" {
		mic = "hw:2,0"
	}

	dir := os.Getenv("ALEX_CONFIG_DIR")
	if dir == "" {
		dir = filepath.Join(home, ".alex")
	}

	return Config{
		APIBase:   base,
		APIToken:  os.Getenv("ALEX_API_TOKEN"),
		OpenAIKey: os.Getenv("OPENAI_API_KEY"),
		MicDevice: mic,
		ConfigDir: dir,
	}
}
