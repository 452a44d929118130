package main

import (
	"github.com/pkg/errors"

	"github.com/zhouzirui/vetchat/internal/client"
	"github.com/zhouzirui/vetchat/internal/service/feedback"
)

func feedbackError(err error) string {
	switch {
	case errors.Is(err, client.ErrEmptyFeedback):
		return feedback.MessageEmpty
	case errors.Is(err, client.ErrFeedbackTooLong):
		return feedback.MessageTooLong
	default:
		return feedback.MessageInternal
	}
}
