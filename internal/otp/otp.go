// Package otp issues and checks one-time phone verification codes.
package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/events"
	"github.com/delonixservices/b2b-agent-sub001/pkg/metrics"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Purposes a code can be issued for. A code is only valid for its own purpose.
const (
	PurposeSignup = "signup"
	PurposeLogin  = "login"
)

var (
	ErrInvalidOTP      = errors.New("invalid otp")
	ErrExpired         = errors.New("otp expired or not requested")
	ErrTooManyAttempts = errors.New("too many otp attempts")
	ErrCooldown        = errors.New("otp recently sent, retry later")
	ErrInvalidPurpose  = errors.New("invalid otp purpose")
)

// Sender delivers a code to a phone.
type Sender interface {
	SendOTP(ctx context.Context, phone, code, purpose string, ttl time.Duration) error
}

type Options struct {
	TTL            time.Duration
	MaxAttempts    int
	ResendCooldown time.Duration
}

type Service struct {
	store  Store
	sender Sender
	opts   Options
	now    func() time.Time
}

func NewService(store Store, sender Sender, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	return &Service{store: store, sender: sender, opts: opts, now: time.Now}
}

func ValidPurpose(p string) bool {
	return p == PurposeSignup || p == PurposeLogin
}

func key(phone, purpose string) string { return purpose + ":" + phone }

func (s *Service) validateOpts() totp.ValidateOpts {
	period := uint(s.opts.TTL / time.Second)
	if period == 0 {
		period = 30
	}
	return totp.ValidateOpts{Period: period, Skew: 1, Digits: otp.DigitsSix, Algorithm: otp.AlgorithmSHA1}
}

// Send issues a fresh code for phone, replacing any pending one.
func (s *Service) Send(ctx context.Context, phone, purpose string) error {
	if !ValidPurpose(purpose) {
		return ErrInvalidPurpose
	}
	k := key(phone, purpose)
	ok, err := s.store.AcquireCooldown(ctx, k, s.opts.ResendCooldown)
	if err != nil {
		return fmt.Errorf("otp cooldown: %w", err)
	}
	if !ok {
		return ErrCooldown
	}
	secret, err := totp.Generate(totp.GenerateOpts{Issuer: "b2b-portal", AccountName: phone})
	if err != nil {
		return fmt.Errorf("otp secret: %w", err)
	}
	issued := s.now()
	code, err := totp.GenerateCodeCustom(secret.Secret(), issued, s.validateOpts())
	if err != nil {
		return fmt.Errorf("otp code: %w", err)
	}
	if err := s.store.Save(ctx, k, Record{Secret: secret.Secret(), IssuedAt: issued}, s.opts.TTL); err != nil {
		return fmt.Errorf("otp store: %w", err)
	}
	if err := s.sender.SendOTP(ctx, phone, code, purpose, s.opts.TTL); err != nil {
		return fmt.Errorf("otp delivery: %w", err)
	}
	metrics.OTPSent.WithLabelValues(purpose).Inc()
	return nil
}

// Verify checks code and consumes it on success. Wrong codes count towards
// MaxAttempts; reaching it burns the pending code.
func (s *Service) Verify(ctx context.Context, phone, code, purpose string) error {
	if !ValidPurpose(purpose) {
		return ErrInvalidPurpose
	}
	k := key(phone, purpose)
	rec, err := s.store.Get(ctx, k)
	if err != nil {
		return fmt.Errorf("otp lookup: %w", err)
	}
	if rec == nil || s.now().Sub(rec.IssuedAt) > s.opts.TTL {
		_ = s.store.Delete(ctx, k)
		return ErrExpired
	}
	if rec.Attempts >= s.opts.MaxAttempts {
		_ = s.store.Delete(ctx, k)
		return ErrTooManyAttempts
	}
	valid, err := totp.ValidateCustom(code, rec.Secret, rec.IssuedAt, s.validateOpts())
	if err == nil && valid {
		return s.store.Delete(ctx, k)
	}
	n, err := s.store.IncrAttempts(ctx, k)
	if err != nil {
		return fmt.Errorf("otp attempts: %w", err)
	}
	if n >= s.opts.MaxAttempts {
		_ = s.store.Delete(ctx, k)
		return ErrTooManyAttempts
	}
	return ErrInvalidOTP
}

// NotificationSender hands codes to the notification topic, where the SMS
// gateway consumer picks them up.
type NotificationSender struct {
	Publisher events.Publisher
}

type notification struct {
	Channel          string `json:"channel"`
	To               string `json:"to"`
	Template         string `json:"template"`
	Code             string `json:"code"`
	ExpiresInSeconds int    `json:"expiresInSeconds"`
}

func (n NotificationSender) SendOTP(ctx context.Context, phone, code, purpose string, ttl time.Duration) error {
	env := events.NewEnvelope(events.TypeOTPRequested, notification{
		Channel:          "sms",
		To:               phone,
		Template:         "otp_" + purpose,
		Code:             code,
		ExpiresInSeconds: int(ttl / time.Second),
	})
	return n.Publisher.Publish(ctx, events.TopicNotifications, phone, env)
}
