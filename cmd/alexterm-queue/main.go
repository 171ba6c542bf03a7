// alexterm-queue appends an autonomous message to the terminal queue file.
// A running terminal picks it up on its next poll tick.
package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	cli "github.com/spf13/pflag"

	"alexterm/internal/api"
	"alexterm/internal/config"
	"alexterm/internal/store"
)

func main() {
	title := cli.StringP("title", "t", "ALEX", "Message title")
	cli.Parse()

	body := strings.TrimSpace(strings.Join(cli.Args(), " "))
	if body == "" {
		fmt.Fprintln(os.Stderr, "usage: alexterm-queue [--title TITLE] message text")
		os.Exit(1)
	}

	cfg := config.Load("")
	st := store.New(afero.NewOsFs(), cfg.ConfigDir)

	if err := st.AppendQueue(api.Message{Title: *title, Body: body}); err != nil {
		fmt.Fprintln(os.Stderr, "failed to enqueue:", err)
		os.Exit(1)
	}

	if pid := st.MarkerPID(); pid > 0 && processAlive(pid) {
		fmt.Printf("queued for terminal (pid %d)\n", pid)
	} else {
		fmt.Println("queued; no terminal running, delivered on next start")
	}
}

// processAlive checks whether the pid still exists without signalling it.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
