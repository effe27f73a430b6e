package sink

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Names is the track-names side channel: one name per line, consumed
// lazily, one per confirmed track. Once the file yields EOF it is closed
// and every later request returns the empty string, so subsequent tracks
// are numbered, never named.
type Names struct {
	f       *os.File // nil when reading standard input
	br      *bufio.Reader
	display string
}

// OpenNames opens the side channel ("-" means standard input) and skips
// the first skip entries, for runs whose track numbering starts past 1.
// If the file is exhausted during the skip it is closed immediately.
func OpenNames(path string, skip int) (*Names, error) {
	n := &Names{display: "<standard input>"}
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("unable to open track names file %q: %w", path, err)
		}
		n.f = f
		n.br = bufio.NewReader(f)
		n.display = path
	} else {
		n.br = bufio.NewReader(os.Stdin)
	}
	for i := 0; i < skip && n.br != nil; i++ {
		if _, err := n.br.ReadString('\n'); err != nil {
			if err == io.EOF {
				n.exhaust()
				break
			}
			return nil, fmt.Errorf("error while reading track names file %q: %w", n.display, err)
		}
	}
	return n, nil
}

// Next returns the next name, trimmed of trailing whitespace, or "" once
// the side channel is exhausted.
func (n *Names) Next() (string, error) {
	if n.br == nil {
		return "", nil
	}
	line, err := n.br.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("unable to read track names file %q: %w", n.display, err)
	}
	if err == io.EOF && line == "" {
		n.exhaust()
		return "", nil
	}
	if err == io.EOF {
		// Final unterminated line: still a name, but nothing follows.
		defer n.exhaust()
	}
	return strings.TrimRight(line, " \t\r\n"), nil
}

// exhaust closes the file and marks the channel empty.
func (n *Names) exhaust() {
	if n.f != nil {
		n.f.Close()
		n.f = nil
	}
	n.br = nil
}

// Close releases the underlying file if it is still open.
func (n *Names) Close() error {
	if n.f != nil {
		err := n.f.Close()
		n.f = nil
		n.br = nil
		return err
	}
	n.br = nil
	return nil
}
