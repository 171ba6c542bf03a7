package main

import (
	"net/http"
	"os"
	"path/filepath"

	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"alexterm/internal/api"
	"alexterm/internal/config"
	"alexterm/internal/poller"
	"alexterm/internal/proxy"
	"alexterm/internal/store"
	"alexterm/internal/ui"
	"alexterm/internal/voice"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", "", "Env file path")
	apiBase := cli.StringP("api", "a", "", "Control API base URL (overrides ALEX_API_BASE)")
	proxyAddr := cli.StringP("proxy", "p", "", "SOCKS5 proxy address for the OpenAI API")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	duck := cli.Bool("duck", false, "Lower other audio streams while speaking")
	cli.Parse()

	cfg := config.Load(*envFile)
	if *apiBase != "" {
		cfg.APIBase = *apiBase
	}

	fs := afero.NewOsFs()
	fs.MkdirAll(cfg.ConfigDir, 0o755)

	// The TUI owns stdout, so logs go to a file under the state directory.
	logFile, err := os.OpenFile(filepath.Join(cfg.ConfigDir, "terminal.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logFile = os.Stderr
	} else {
		defer logFile.Close()
	}
	log.SetDefault(log.New(tint.NewHandler(logFile, &tint.Options{
		Level:   logLevelMap[*logLevel],
		NoColor: true,
	})))

	log.Info("Booting up", "api", cfg.APIBase)
	if cfg.OpenAIKey == "" {
		log.Warn("OPENAI_API_KEY not set, voice features disabled")
	}

	var openaiHTTP *http.Client
	if *proxyAddr != "" {
		openaiHTTP, err = proxy.NewSocksClient(*proxyAddr)
		if err != nil {
			log.Error("Failed to dial socks proxy", "proxy", *proxyAddr, "err", err)
			os.Exit(1)
		}
		log.Debug("Loaded proxy")
	}

	client := api.NewClient(cfg.APIBase, cfg.APIToken)
	st := store.New(fs, cfg.ConfigDir)
	engine := voice.NewEngine(voice.Config{
		FS:         fs,
		APIKey:     cfg.OpenAIKey,
		HTTPClient: openaiHTTP,
		MicDevice:  cfg.MicDevice,
		DuckOthers: *duck,
	})

	st.WriteMarker()
	defer st.RemoveMarker()

	model := ui.New(ui.Deps{
		Client:       client,
		Store:        st,
		Voice:        engine,
		PollInterval: poller.DefaultInterval,
	})

	prog := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		log.Error("terminal crashed", "err", err)
		os.Exit(1)
	}

	log.Info("Shutdown complete")
}
