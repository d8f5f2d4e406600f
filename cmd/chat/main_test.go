package main

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{
			name: "Short string unchanged",
			in:   "hello",
			n:    50,
			want: "hello",
		},
		{
			name: "Exact length unchanged",
			in:   "hello",
			n:    5,
			want: "hello",
		},
		{
			name: "Long string cut with ellipsis",
			in:   "hello world",
			n:    5,
			want: "hello...",
		},
		{
			name: "Multi-byte runes not split",
			in:   "héllo wörld",
			n:    5,
			want: "héllo...",
		},
		{
			name: "CJK content cut on rune boundary",
			in:   "你好世界你好世界",
			n:    4,
			want: "你好世界...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}
