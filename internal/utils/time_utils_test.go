package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseStringTime(t *testing.T) {
	tests := []struct {
		timeString string
		expected   time.Duration
	}{
		{"10s", 10 * time.Second},
		{"20M", 20 * time.Minute},
		{"48h", 48 * time.Hour},
		{"2d", 2 * time.Hour * 24},
		{"", 0},
		{"abc", 0},
		{"10x", 0},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, ParseStringTime(test.timeString),
			"ParseStringTime(%s)", test.timeString)
	}
}
