package validator

import (
	"errors"
	"fmt"
	"time"
)

// CheckTimeBeforeNow : check if the given string is a valid duration string or utc datetime string,
// and check if the time before now.
func CheckTimeBeforeNow(str string) (time.Time, error) {
	now := time.Now()

	if str == "now()" {
		return now, nil
	}
	// relative time duration, like -20h5m2s
	if d, err := time.ParseDuration(str); err == nil {
		t := now.Add(d)
		if t.Before(now) {
			return t, nil
		}
		return time.Time{}, errors.New("time should before now")
	}
	// absolute utc datetime string, like 2021-10-02T15:04:05Z
	if t, err := time.Parse("2006-01-02T15:04:05Z", str); err == nil {
		if t.Before(now) {
			return t, nil
		}
		return time.Time{}, errors.New("time should before now")
	}
	return time.Time{}, errors.New("invalid string")
}

// CheckDurationPositive : check if the given string is a valid positive duration string,
// like 5h30m.
func CheckDurationPositive(str string) (time.Duration, error) {
	d, err := time.ParseDuration(str)
	if err != nil {
		return 0, fmt.Errorf("invalid duration string")
	}
	if d <= 0 {
		return 0, fmt.Errorf("negative duration string")
	}
	return d, nil
}
