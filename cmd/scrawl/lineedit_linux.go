//go:build linux

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

var seedHistory []string

// readInteractiveLine reads one seed line in raw mode so that backspace and
// up/down history work. Falls back to buffered reads when stdin is not a
// terminal.
func readInteractiveLine(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	oldState, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		// Not a TTY (piped input).
		fmt.Print(prompt)
		r := bufio.NewReader(os.Stdin)
		s, rerr := r.ReadString('\n')
		if rerr != nil {
			if rerr == io.EOF && s == "" {
				return "", io.EOF
			}
			if rerr != io.EOF {
				return "", rerr
			}
		}
		return trimTrailingNewline(s), nil
	}

	raw := *oldState
	raw.Lflag &^= unix.ICANON | unix.ECHO
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &raw); err != nil {
		return "", err
	}
	defer func() {
		_ = unix.IoctlSetTermios(fd, unix.TCSETS, oldState)
	}()

	line := make([]byte, 0, 128)
	histPos := len(seedHistory)
	draft := ""

	redraw := func() {
		fmt.Printf("\r\x1b[K%s%s", prompt, string(line))
	}
	redraw()

	var buf [8]byte
	for {
		n, err := os.Stdin.Read(buf[:1])
		if err != nil || n == 0 {
			fmt.Println()
			return "", io.EOF
		}
		switch b := buf[0]; b {
		case '\r', '\n':
			fmt.Println()
			s := string(line)
			if s != "" {
				seedHistory = append(seedHistory, s)
			}
			return s, nil
		case 0x03: // Ctrl-C clears the line
			line = line[:0]
			histPos = len(seedHistory)
			redraw()
		case 0x04: // Ctrl-D on an empty line exits
			if len(line) == 0 {
				fmt.Println()
				return "", io.EOF
			}
		case 0x7f, 0x08: // backspace
			if len(line) > 0 {
				line = line[:len(line)-1]
				redraw()
			}
		case 0x1b: // escape sequence: arrows browse history
			if _, err := os.Stdin.Read(buf[1:3]); err != nil {
				continue
			}
			if buf[1] != '[' {
				continue
			}
			switch buf[2] {
			case 'A': // up
				if histPos > 0 {
					if histPos == len(seedHistory) {
						draft = string(line)
					}
					histPos--
					line = append(line[:0], seedHistory[histPos]...)
					redraw()
				}
			case 'B': // down
				if histPos < len(seedHistory) {
					histPos++
					if histPos == len(seedHistory) {
						line = append(line[:0], draft...)
					} else {
						line = append(line[:0], seedHistory[histPos]...)
					}
					redraw()
				}
			}
		default:
			if b >= 0x20 {
				line = append(line, b)
				fmt.Print(string(b))
			}
		}
	}
}

func trimTrailingNewline(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '\r' {
		s = s[:len(s)-1]
	}
	return s
}
