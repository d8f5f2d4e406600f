package stream

import (
	"bufio"
	"encoding/json"
	"io"
	"iter"
	"strings"
)

// event mirrors a single newline-delimited JSON object emitted by the chat
// endpoint. Every other field the server sends is ignored.
type event struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// Tokens reads a raw chat completion response and returns an iterator that yields
// each incremental content fragment in emission order. It consumes the HTTP header
// block up to the first blank line, tolerates interleaved chunked-transfer-encoding
// length lines, and stops after an event carrying done=true, on EOF, or on a read
// error. A read timeout or connection close is treated as a natural end of stream,
// so a partial response is still delivered in full; malformed JSON lines are
// silently skipped.
func Tokens(r io.Reader) iter.Seq[string] {
	return func(yield func(string) bool) {
		br := bufio.NewReader(r)

		if !skipHeaders(br) {
			return
		}

		for {
			line, err := readLine(br)

			switch {
			case line == "":
			case isChunkSizeLine(line):
			case strings.HasPrefix(line, "{"):
				var ev event
				if jsonErr := json.Unmarshal([]byte(line), &ev); jsonErr == nil {
					if ev.Message.Content != "" && !yield(ev.Message.Content) {
						return
					}
					if ev.Done {
						return
					}
				}
			}

			if err != nil {
				return
			}
		}
	}
}

// skipHeaders discards lines up to and including the blank line terminating the
// HTTP header block. It reports false if the stream ends first.
func skipHeaders(br *bufio.Reader) bool {
	for {
		line, err := readLine(br)
		if line == "" && err == nil {
			return true
		}
		if err != nil {
			return false
		}
	}
}

// readLine reads one line, stripping the trailing newline and any carriage
// return. When the stream ends mid-line the partial data is returned alongside
// the error, so a timeout with buffered bytes still yields a final short line.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	line = strings.TrimRight(line, "\n")
	line = strings.ReplaceAll(line, "\r", "")
	return line, err
}

// isChunkSizeLine reports whether a line looks like a chunked-transfer-encoding
// length marker: entirely hexadecimal digits and shorter than 8 characters. Real
// JSON event lines are longer and contain non-hex characters, so this cheaply
// skips chunk framing without a full chunked decoder. A content token that is
// itself short and all-hex would be misclassified; the server never emits bare
// tokens outside JSON objects, so the case cannot arise on this wire format.
func isChunkSizeLine(line string) bool {
	if len(line) >= 8 {
		return false
	}
	for _, c := range []byte(line) {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
