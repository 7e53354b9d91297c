package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/aware-dev/aware-go-nan-manager/internal/logger"
)

// ParseStringTime parses duration strings of the form "10s", "5m", "2h" or
// "1d". Returns 0 on malformed input.
func ParseStringTime(timeString string) time.Duration {
	timeString = strings.ToLower(strings.TrimSpace(timeString))
	if timeString == "" {
		return 0
	}

	units := []struct {
		suffix string
		unit   time.Duration
	}{
		{"s", time.Second},
		{"m", time.Minute},
		{"h", time.Hour},
		{"d", 24 * time.Hour},
	}

	for _, u := range units {
		cutString, _, found := strings.Cut(timeString, u.suffix)
		if !found {
			continue
		}
		number, err := strconv.Atoi(cutString)
		if err != nil {
			logger.ErrorF("Error parsing time string: %s", err.Error())
			return 0
		}
		return time.Duration(number) * u.unit
	}

	logger.ErrorF("invalid time format: %s", timeString)
	return 0
}
