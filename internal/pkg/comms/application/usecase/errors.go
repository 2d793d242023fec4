package usecase

import "errors"

var ErrPersistence = errors.New("comms persistence failed")
