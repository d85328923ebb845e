package common

import "errors"

// Business logic errors
var (
	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")

	// Member errors
	ErrMemberNotFound = errors.New("member not found")

	// Messaging errors
	ErrBlockedBySelf     = errors.New("you have blocked this user")
	ErrBlockedByOther    = errors.New("this user has blocked you")
	ErrSelfConversation  = errors.New("cannot message yourself")
	ErrEmptyMessage      = errors.New("message body is empty")
	ErrMessageTooLong    = errors.New("message body exceeds the maximum length")
	ErrAlreadyBlocked    = errors.New("member is already blocked")
	ErrBlockNotFound     = errors.New("block record not found")
	ErrResolutionFailed  = errors.New("conversation resolution failed")
	ErrHistoryLoadFailed = errors.New("failed to load message history")
	ErrSendFailed        = errors.New("failed to send message")
	ErrGateUnavailable   = errors.New("unable to verify messaging permissions")
)
