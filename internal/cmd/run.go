package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"console3/internal/termsession"
	"console3/internal/vt"
)

// pumpInterval is how often the UI-thread pump drains the ring and feeds
// the parser. The pump itself never blocks; a ticker is enough since the
// core carries no repaint-scheduling obligation of its own.
const pumpInterval = 8 * time.Millisecond

func newRunCmd() *cobra.Command {
	var shell string
	var scrollback int

	cmd := &cobra.Command{
		Use:   "run [-- <shell> [args...]]",
		Short: "Host a shell behind the terminal core against the current tty",
		Long: `run starts a pseudo-console, spawns a shell inside it, and drives the
VT parser and cell grid against the calling terminal. It is a minimal
demonstration host for the terminal core; a windowing shell, a
GPU-accelerated renderer, and a tab bar would layer on top of the same
session API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var shellArgs []string
			shellCmd := shell
			if len(args) > 0 {
				shellCmd = args[0]
				shellArgs = args[1:]
			}
			return runInteractive(shellCmd, shellArgs, scrollback)
		},
	}

	cmd.Flags().StringVar(&shell, "shell", "", "shell to launch (defaults to $SHELL)")
	cmd.Flags().IntVar(&scrollback, "scrollback", 10000, "scrollback line capacity")

	return cmd
}

func runInteractive(shell string, args []string, scrollback int) error {
	stdinFd := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFd) {
		return fmt.Errorf("run: stdin is not a terminal")
	}

	cols, rows, err := term.GetSize(stdinFd)
	if err != nil || rows <= 0 || cols <= 0 {
		rows, cols = 25, 80
	}

	// Detect the real terminal's colors before entering raw mode, refreshing
	// the on-disk hint cache. The result is not passed to the session: the
	// parser answers OSC 10/11 queries with its own default colors.
	_ = detectTerminalHints()

	var exitCode atomic.Int32
	done := make(chan struct{})
	var closedDone atomic.Bool

	signalDone := func() {
		if closedDone.CompareAndSwap(false, true) {
			close(done)
		}
	}

	renderer := newTerminalRenderer()

	var sess *termsession.Session
	sess = termsession.New(termsession.SessionConfig{
		Shell:           shell,
		Args:            args,
		Rows:            rows,
		Cols:            cols,
		ScrollbackLines: scrollback,
	}, termsession.Handlers{
		OnDamage: func(r vt.Rect) {
			renderer.DrawRect(sess.Grid(), r)
		},
		OnBell: func() {
			renderer.out.WriteByte(0x07)
		},
		OnTitle: func(title string) {
			fmt.Fprintf(renderer.out, "\x1b]0;%s\x07", title)
		},
		OnExit: func(code uint32) {
			exitCode.Store(int32(code))
			signalDone()
		},
		OnError: func(err error) {
			exitCode.Store(1)
			signalDone()
		},
	})

	if err := sess.Start(); err != nil {
		return fmt.Errorf("run: start session: %w", err)
	}

	oldState, err := term.MakeRaw(stdinFd)
	if err != nil {
		sess.Stop()
		return fmt.Errorf("run: set raw mode: %w", err)
	}
	defer func() {
		term.Restore(stdinFd, oldState)
		os.Stdout.WriteString("\x1b[0m\r\n")
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGWINCH)
	defer signal.Stop(sigCh)
	go watchResize(sess, stdinFd, sigCh)

	go pumpInputFromStdin(sess, done)

	ticker := time.NewTicker(pumpInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-done:
			break loop
		case <-ticker.C:
			sess.ProcessOutput()
			if s := renderer.Flush(); s != "" {
				os.Stdout.WriteString(s)
			}
		}
	}
	sess.ProcessOutput()
	if s := renderer.Flush(); s != "" {
		os.Stdout.WriteString(s)
	}

	sess.Stop()

	code := exitCode.Load()
	fmt.Fprintf(os.Stderr, "process exited with code %d\n", code)
	if code != 0 {
		os.Exit(int(code))
	}
	return nil
}

// pumpInputFromStdin forwards raw tty bytes to the PTY unchanged. The
// calling terminal has already encoded named keys (arrows, function keys,
// etc.) as real VT byte sequences before they reach us; internal/input's
// translator is for hosts that deliver discrete key and mouse events, and
// is wired up through the session's KeyboardKey/Mouse/Paste methods.
func pumpInputFromStdin(sess *termsession.Session, done <-chan struct{}) {
	buf := make([]byte, 4096)
	for {
		select {
		case <-done:
			return
		default:
		}
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			_ = sess.Write(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// watchResize forwards SIGWINCH size changes into the session.
func watchResize(sess *termsession.Session, fd int, sigCh <-chan os.Signal) {
	for range sigCh {
		cols, rows, err := term.GetSize(fd)
		if err != nil || rows <= 0 || cols <= 0 {
			continue
		}
		_ = sess.Resize(cols, rows)
		os.Stdout.WriteString("\x1b[2J")
	}
}
