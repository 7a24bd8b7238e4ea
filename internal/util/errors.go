package util

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailRegistered   = errors.New("email already registered")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrTestNotFound      = errors.New("test not found")
	ErrTestNotPublished  = errors.New("test not published or not accessible")
	ErrAttemptNotFound   = errors.New("attempt not found")
	ErrAlreadyCompleted  = errors.New("a completed attempt already exists for this test")
	ErrAlreadyTerminal   = errors.New("attempt already submitted")
	ErrAttemptTerminal   = errors.New("attempt is no longer in progress")
	ErrQuestionNotInTest = errors.New("question does not belong to this test")
	ErrAttemptNotFinal   = errors.New("attempt not submitted yet")
)
