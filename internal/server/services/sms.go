package services

import (
	"context"

	"github.com/echosphere/echosphere/internal/logging"
)

// SMSSender delivers a text message to a phone number. The concrete vendor
// is pluggable; the auth service only depends on this interface.
type SMSSender interface {
	SendSMS(ctx context.Context, phone string, message string) error
}

// LogSMSSender writes the message to the log instead of sending it. Used in
// development and tests, where the OTP is read from the log output.
type LogSMSSender struct {
	log logging.Logger
}

func NewLogSMSSender(log logging.Logger) *LogSMSSender {
	return &LogSMSSender{log: log.With("module", "sms")}
}

func (s *LogSMSSender) SendSMS(ctx context.Context, phone string, message string) error {
	s.log.Info(ctx, "sms (dev delivery)", "phone", phone, "message", message)
	return nil
}
