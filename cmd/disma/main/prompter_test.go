package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteractivePrompterConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"lowercase y", "y\n", true},
		{"uppercase YES", "YES\n", true},
		{"with spaces", "  yes  \n", true},
		{"no", "n\n", false},
		{"anything else", "sure\n", false},
		{"empty line", "\n", false},
		{"eof", "", false},
		{"y without newline", "y", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := NewInteractivePrompter(strings.NewReader(tt.input), &out).Confirm(context.Background(), "Apply 2 changes?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Apply 2 changes? [y/N]: ", out.String())
		})
	}
}

func TestInteractivePrompterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewInteractivePrompter(strings.NewReader("y\n"), &bytes.Buffer{}).Confirm(ctx, "Continue?")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNonInteractivePrompter(t *testing.T) {
	ok, err := NonInteractivePrompter{}.Confirm(context.Background(), "Continue?")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNonInteractive)
}
