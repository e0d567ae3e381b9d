package domain

import "errors"

var (
	ErrNoRunData        = errors.New("coverage report has no run data")
	ErrOutsideRoot      = errors.New("file is not under the working directory")
	ErrInvalidThreshold = errors.New("thresholds must satisfy 0 <= low <= caution <= 100")
)
