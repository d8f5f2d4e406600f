package stream_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/MegaGrindStone/ollamachat/internal/stream"
)

func collect(input string) []string {
	var tokens []string
	for tok := range stream.Tokens(strings.NewReader(input)) {
		tokens = append(tokens, tok)
	}
	return tokens
}

func TestTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name: "Plain response",
			input: "HTTP/1.1 200 OK\r\n\r\n" +
				"{\"message\":{\"content\":\"Hi\"},\"done\":false}\n" +
				"{\"message\":{\"content\":\"!\"},\"done\":true}\n",
			want: []string{"Hi", "!"},
		},
		{
			name: "Stops at done flag",
			input: "HTTP/1.1 200 OK\r\n\r\n" +
				"{\"message\":{\"content\":\"a\"},\"done\":true}\n" +
				"{\"message\":{\"content\":\"never\"},\"done\":false}\n",
			want: []string{"a"},
		},
		{
			name: "Chunk size lines skipped",
			input: "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n" +
				"1a3\n" +
				"{\"message\":{\"content\":\"Hi\"},\"done\":false}\n" +
				"0\n" +
				"{\"message\":{\"content\":\"!\"},\"done\":true}\n",
			want: []string{"Hi", "!"},
		},
		{
			name: "Malformed JSON lines skipped",
			input: "HTTP/1.1 200 OK\r\n\r\n" +
				"{not json at all\n" +
				"{\"message\":{\"content\":\"ok\"},\"done\":true}\n",
			want: []string{"ok"},
		},
		{
			name: "Empty content not emitted",
			input: "HTTP/1.1 200 OK\r\n\r\n" +
				"{\"message\":{\"content\":\"\"},\"done\":false}\n" +
				"{\"message\":{\"content\":\"x\"},\"done\":false}\n" +
				"{\"message\":{\"content\":\"\"},\"done\":true}\n",
			want: []string{"x"},
		},
		{
			name: "Blank lines between events skipped",
			input: "HTTP/1.1 200 OK\r\n\r\n" +
				"\n" +
				"{\"message\":{\"content\":\"a\"},\"done\":false}\n" +
				"\r\n" +
				"{\"message\":{\"content\":\"b\"},\"done\":true}\n",
			want: []string{"a", "b"},
		},
		{
			name: "Carriage returns stripped from event lines",
			input: "HTTP/1.1 200 OK\r\n\r\n" +
				"{\"message\":{\"content\":\"a\"},\"done\":true}\r\n",
			want: []string{"a"},
		},
		{
			name: "Final partial line without newline still parsed",
			input: "HTTP/1.1 200 OK\r\n\r\n" +
				"{\"message\":{\"content\":\"a\"},\"done\":false}\n" +
				"{\"message\":{\"content\":\"b\"},\"done\":false}",
			want: []string{"a", "b"},
		},
		{
			name: "EOF without done flag ends stream",
			input: "HTTP/1.1 200 OK\r\n\r\n" +
				"{\"message\":{\"content\":\"partial\"},\"done\":false}\n",
			want: []string{"partial"},
		},
		{
			name:  "Stream ending inside headers yields nothing",
			input: "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\n",
			want:  nil,
		},
		{
			name:  "Empty stream yields nothing",
			input: "",
			want:  nil,
		},
		{
			name: "Unrecognized lines ignored",
			input: "HTTP/1.1 200 OK\r\n\r\n" +
				"some trailing garbage\n" +
				"{\"message\":{\"content\":\"a\"},\"done\":true}\n",
			want: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(tt.input)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Tokens() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokensEarlyBreak(t *testing.T) {
	input := "HTTP/1.1 200 OK\r\n\r\n" +
		"{\"message\":{\"content\":\"a\"},\"done\":false}\n" +
		"{\"message\":{\"content\":\"b\"},\"done\":false}\n" +
		"{\"message\":{\"content\":\"c\"},\"done\":true}\n"

	var got []string
	for tok := range stream.Tokens(strings.NewReader(input)) {
		got = append(got, tok)
		if len(got) == 2 {
			break
		}
	}

	if !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Tokens() with early break = %q, want [a b]", got)
	}
}
