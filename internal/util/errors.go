package util

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailRegistered     = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrMissionNotFound     = errors.New("mission not found")
	ErrMissionNotPublished = errors.New("mission not published")
	ErrChallengeNotFound   = errors.New("challenge not found")
	ErrProgressNotFound    = errors.New("progress not found")
	ErrInvalidAnswers      = errors.New("invalid answers payload")
	ErrAIEvalDisabled      = errors.New("AI evaluation is disabled")
	ErrAttachmentNotFound  = errors.New("attachment not found")
	ErrNoSubmission        = errors.New("submission text is required")
)
