package util

import "errors"

var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrEmailRegistered  = errors.New("该邮箱已被注册")
	ErrPermissionDenied = errors.New("permission denied")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAnswerNotFound   = errors.New("answer not found")
	ErrAnswerTooShort   = errors.New("answer must be at least 20 characters")
	ErrAnswerMismatch   = errors.New("answer does not belong to this question")
	ErrTagsRequired     = errors.New("at least one tag is required")
	ErrBadVoteTarget    = errors.New("invalid vote target")
	ErrAccountDisabled  = errors.New("account disabled")
)
