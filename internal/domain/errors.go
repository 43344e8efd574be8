package domain

import "errors"

var ErrOutOfRange = errors.New("coordinate out of range")
