package usecase

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrStudentNotFound = errors.New("student profile not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrInternal        = errors.New("internal error")
)
