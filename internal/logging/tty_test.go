package logging

import (
	"os"
	"testing"
)

func TestSupportsColor(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		isTTY bool
		want  bool
	}{
		{
			name:  "NO_COLOR prevents color",
			env:   map[string]string{"NO_COLOR": "1"},
			isTTY: true,
			want:  false,
		},
		{
			name:  "NO_COLOR wins over CLICOLOR_FORCE",
			env:   map[string]string{"NO_COLOR": "", "CLICOLOR_FORCE": "1"},
			isTTY: false,
			want:  false,
		},
		{
			name:  "CLICOLOR_FORCE enables color off a TTY",
			env:   map[string]string{"CLICOLOR_FORCE": "1"},
			isTTY: false,
			want:  true,
		},
		{
			name:  "CLICOLOR_FORCE=0 is ignored",
			env:   map[string]string{"CLICOLOR_FORCE": "0"},
			isTTY: false,
			want:  false,
		},
		{
			name:  "TERM=dumb prevents color",
			env:   map[string]string{"TERM": "dumb"},
			isTTY: true,
			want:  false,
		},
		{
			name:  "TTY allows color",
			env:   map[string]string{"TERM": "xterm-256color"},
			isTTY: true,
			want:  true,
		},
		{
			name:  "non-TTY prevents color",
			env:   map[string]string{},
			isTTY: false,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// t.Setenv restores the originals; Unsetenv clears them for this case.
			t.Setenv("NO_COLOR", "")
			t.Setenv("CLICOLOR_FORCE", "")
			t.Setenv("TERM", "")
			os.Unsetenv("NO_COLOR")
			os.Unsetenv("CLICOLOR_FORCE")
			os.Unsetenv("TERM")

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			if got := supportsColor(tt.isTTY); got != tt.want {
				t.Errorf("supportsColor() = %v, want %v (env=%v, isTTY=%v)", got, tt.want, tt.env, tt.isTTY)
			}
		})
	}
}

func TestIsTTY_NonFile(t *testing.T) {
	var w mockWriter
	if IsTTY(&w) {
		t.Error("IsTTY should return false for mockWriter")
	}
}

type mockWriter struct{}

func (m *mockWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}
