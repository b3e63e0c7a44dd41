package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{850 * time.Millisecond, "850ms"},
		{12*time.Second + 300*time.Millisecond, "12s"},
		{3*time.Minute + 4*time.Second, "3m 04s"},
		{59*time.Second + 600*time.Millisecond, "1m 00s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in))
	}
}
