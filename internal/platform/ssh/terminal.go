package ssh

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/ssh"
	"golang.org/x/term"
)

// Interactive attaches the local terminal to a remote login shell, or to
// command when it is not empty, and returns the remote exit status. When
// stdin is a terminal it is switched to raw mode for the session.
func (c *Client) Interactive(ctx context.Context, command string, stdin *os.File, stdout, stderr io.Writer) (int, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return -1, err
	}
	defer func() { _ = client.Close() }()

	session, err := client.NewSession()
	if err != nil {
		return -1, fmt.Errorf("failed to create SSH session on %s: %w", c.config.Host, err)
	}
	defer func() { _ = session.Close() }()

	fd := int(stdin.Fd())
	if term.IsTerminal(fd) {
		width, height, err := term.GetSize(fd)
		if err != nil {
			width, height = 80, 24
		}
		modes := ssh.TerminalModes{
			ssh.ECHO:          1,
			ssh.TTY_OP_ISPEED: 14400,
			ssh.TTY_OP_OSPEED: 14400,
		}
		if err := session.RequestPty(termType(), height, width, modes); err != nil {
			return -1, fmt.Errorf("failed to request pty: %w", err)
		}
		state, err := term.MakeRaw(fd)
		if err != nil {
			return -1, fmt.Errorf("failed to switch terminal to raw mode: %w", err)
		}
		defer func() { _ = term.Restore(fd, state) }()
	}

	session.Stdin = stdin
	session.Stdout = stdout
	session.Stderr = stderr

	if command == "" {
		if err := session.Shell(); err != nil {
			return -1, fmt.Errorf("failed to start shell: %w", err)
		}
		return exitStatus(session.Wait())
	}
	return exitStatus(session.Run(command))
}

func termType() string {
	if t := os.Getenv("TERM"); t != "" {
		return t
	}
	return "xterm-256color"
}
