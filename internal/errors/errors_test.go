package errors

import (
	"fmt"
	"testing"
)

func TestExitError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ExitError
		want string
	}{
		{
			name: "with underlying error",
			err:  NewExitError(ErrNotFound, ExitUser),
			want: "resource not found",
		},
		{
			name: "with wrapped error",
			err:  NewExitError(fmt.Errorf("loading config: %w", ErrInvalidConfig), ExitUser),
			want: "loading config: invalid configuration",
		},
		{
			name: "with cockroach wrap",
			err:  NewExitError(Wrap(ErrKeyNotFound, "ui.theme"), ExitUser),
			want: "ui.theme: configuration key not set",
		},
		{
			name: "nil underlying error",
			err:  NewExitError(nil, ExitUser),
			want: "exit code 1",
		},
		{
			name: "success code with error",
			err:  NewExitError(New("unexpected"), ExitSuccess),
			want: "unexpected",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ExitError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	tests := []struct {
		name       string
		err        *ExitError
		wantTarget error
		wantIs     bool
	}{
		{
			name:       "unwrap to sentinel error",
			err:        NewExitError(ErrNotFound, ExitUser),
			wantTarget: ErrNotFound,
			wantIs:     true,
		},
		{
			name:       "unwrap through wrapped error",
			err:        NewExitError(Wrapf(ErrInvalidLevel, "level %q", "LOUD"), ExitUser),
			wantTarget: ErrInvalidLevel,
			wantIs:     true,
		},
		{
			name:       "no match for different sentinel",
			err:        NewExitError(ErrNotFound, ExitUser),
			wantTarget: ErrInvalidConfig,
			wantIs:     false,
		},
		{
			name:       "nil underlying error",
			err:        NewExitError(nil, ExitUser),
			wantTarget: ErrNotFound,
			wantIs:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.wantTarget); got != tt.wantIs {
				t.Errorf("Is() = %v, want %v", got, tt.wantIs)
			}
		})
	}
}

func TestExitError_As(t *testing.T) {
	err := Wrap(NewConfigError(ErrInvalidConfig), "executing root command")

	var exitErr *ExitError
	if !As(err, &exitErr) {
		t.Fatal("As() did not find ExitError in chain")
	}
	if exitErr.Code != ExitUser {
		t.Errorf("Code = %d, want %d", exitErr.Code, ExitUser)
	}
	if exitErr.Suggestion != "Run: appcfg doctor" {
		t.Errorf("Suggestion = %q", exitErr.Suggestion)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *ExitError
		wantCode int
	}{
		{"user", NewUserError(ErrNotFound, "try again"), ExitUser},
		{"system", NewSystemError(ErrNotFound, "check disk"), ExitSystem},
		{"config", NewConfigError(ErrInvalidConfig), ExitUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", tt.err.Code, tt.wantCode)
			}
			if tt.err.Suggestion == "" {
				t.Error("expected a suggestion")
			}
		})
	}
}

func TestWrap_Nil(t *testing.T) {
	if err := Wrap(nil, "context"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestJoin(t *testing.T) {
	err := Join(ErrNotFound, nil, ErrInvalidLevel)
	if !Is(err, ErrNotFound) || !Is(err, ErrInvalidLevel) {
		t.Errorf("Join() lost a member: %v", err)
	}
}
