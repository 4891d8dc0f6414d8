package constants

import (
	"fmt"
	"testing"
)

func TestStatusRoundTrip(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{nil, 200},
		{ErrInvalidBody, 400},
		{ErrUnknownDevice, 404},
		{ErrFileNotFound, 410},
	}

	for _, tt := range tests {
		got := Status(tt.err)
		if got != tt.status {
			t.Errorf("Status(%v) = %d; want %d", tt.err, got, tt.status)
		}

		back := ParseError(got)
		if back != tt.err {
			t.Errorf("ParseError(%d) = %v; want %v", got, back, tt.err)
		}
	}
}

func TestStatusWrapped(t *testing.T) {
	err := fmt.Errorf("talk bob: %w", ErrUnknownDevice)
	if got := Status(err); got != 404 {
		t.Errorf("Status(wrapped) = %d; want 404", got)
	}

	if got := Status(ErrHashMismatch); got != 500 {
		t.Errorf("Status(ErrHashMismatch) = %d; want 500", got)
	}
	if got := ParseError(503); got != ErrUnknown {
		t.Errorf("ParseError(503) = %v; want ErrUnknown", got)
	}
}
