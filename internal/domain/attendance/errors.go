package attendance

import "errors"

var (
	ErrShiftNotFound = errors.New("shift not found")
)
