package service

import "errors"

var ErrAlreadyDrawn = errors.New("handle already drew today")
