package tpex

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrValidation wraps malformed user input, e.g. a date token whose
// numeric segments fail to parse.
var ErrValidation = errors.New("validation error")

var eightDigits = regexp.MustCompile(`^\d{8}$`)

// rocYearOffset converts a Republic-of-China calendar year to the
// common-era year.
const rocYearOffset = 1911

// NormalizeDate converts a user-supplied date token into the YYYY/MM/DD
// form the report endpoint expects. An empty token stays empty (the
// endpoint then resolves the most recent trading day). A token with "/"
// separators and a first segment of at most 3 digits is read as an ROC
// calendar year. An 8-digit token is read as YYYYMMDD. Anything else
// passes through unchanged for the endpoint to accept or reject.
func NormalizeDate(token string) (string, error) {
	d := strings.TrimSpace(token)
	if d == "" {
		return "", nil
	}
	if parts := strings.Split(d, "/"); len(parts) > 1 && len(parts[0]) <= 3 {
		if len(parts) != 3 {
			return "", fmt.Errorf("%w: date %q must have 3 segments", ErrValidation, token)
		}
		y, err := strconv.Atoi(parts[0])
		if err != nil {
			return "", fmt.Errorf("%w: year in %q: %v", ErrValidation, token, err)
		}
		m, err := strconv.Atoi(parts[1])
		if err != nil {
			return "", fmt.Errorf("%w: month in %q: %v", ErrValidation, token, err)
		}
		dd, err := strconv.Atoi(parts[2])
		if err != nil {
			return "", fmt.Errorf("%w: day in %q: %v", ErrValidation, token, err)
		}
		return fmt.Sprintf("%04d/%02d/%02d", y+rocYearOffset, m, dd), nil
	}
	if eightDigits.MatchString(d) {
		return d[0:4] + "/" + d[4:6] + "/" + d[6:8], nil
	}
	return d, nil
}
