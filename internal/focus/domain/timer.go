package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// MaxMinutes is the largest timer whose hold still fits in a time.Duration.
const MaxMinutes = uint64(math.MaxInt64 / int64(time.Minute))

// ParseMinutes parses the timer token as a non-negative whole number of
// minutes no smaller than min and no larger than MaxMinutes. Every failure
// wraps ErrInput.
func ParseMinutes(token string, min uint) (uint, error) {
	s := strings.TrimSpace(token)
	if s == "" {
		return 0, NewInputError("missing timer minutes")
	}
	if strings.HasPrefix(s, "-") {
		return 0, NewInputError("timer %q must not be negative", token)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, NewInputError("timer %q is not a whole number of minutes", token)
	}
	if n > MaxMinutes {
		return 0, NewInputError("timer must be at most %d minutes, got %d", MaxMinutes, n)
	}
	if n < uint64(min) {
		return 0, NewInputError("timer must be at least %d minute(s), got %d", min, n)
	}
	return uint(n), nil
}
