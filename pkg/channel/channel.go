// Package channel defines outbound channel adapters used by the dispatcher.
package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/umputun/pushscope/pkg/domain"
)

//go:generate moq -out mocks/sender.go -pkg mocks -skip-ensure -fmt goimports . Sender

// Message is what a channel adapter delivers
type Message struct {
	AttemptID string
	OwnerID   string
	Channel   domain.Channel
	Priority  domain.Priority
	Content   domain.Content
}

// Receipt is a successful delivery report
type Receipt struct {
	MessageID    string
	ResponseTime time.Duration
	RawResponse  string
}

// Sender transmits a message to one destination network
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

// Error is a delivery failure with a provider error code
type Error struct {
	Code        string
	Message     string
	RawResponse string
	Permanent   bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewPermanentError makes an error that must not be retried, e.g. recipient blocked the bot
func NewPermanentError(code, msg string) *Error {
	return &Error{Code: code, Message: msg, Permanent: true}
}

// IsPermanent reports whether err says retries are pointless
func IsPermanent(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Permanent
}

// ErrorCode extracts provider error code, "send_error" for errors without one
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "send_error"
}

// RawResponse extracts provider raw response from err, if any
func RawResponse(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.RawResponse
	}
	return ""
}

// Registry maps channels to their senders
type Registry struct {
	mu      sync.RWMutex
	senders map[domain.Channel]Sender
}

// NewRegistry makes an empty registry
func NewRegistry() *Registry {
	return &Registry{senders: map[domain.Channel]Sender{}}
}

// Register sets sender for the channel, replacing existing one
func (r *Registry) Register(ch domain.Channel, s Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.senders[ch] = s
}

// Get returns sender for the channel
func (r *Registry) Get(ch domain.Channel) (Sender, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.senders[ch]
	return s, ok
}

// Channels lists registered channels
func (r *Registry) Channels() []domain.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]domain.Channel, 0, len(r.senders))
	for ch := range r.senders {
		res = append(res, ch)
	}
	return res
}
