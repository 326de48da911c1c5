// Package subscribe provides the destinations a newsletter sign-up can be
// written to. Every sink implements async.SubscriptionSink.
package subscribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pthm/hxsite/lib/async"
)

// Sink kinds accepted by New.
const (
	KindLog     = "log"
	KindMemory  = "memory"
	KindWebhook = "webhook"
	KindS3      = "s3"
)

// ErrUnknownKind is returned by New for an unrecognised sink kind.
var ErrUnknownKind = errors.New("subscribe: unknown sink kind")

// Options selects and configures a sink.
type Options struct {
	Kind string

	WebhookURL string
	Timeout    time.Duration

	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string

	Logger *slog.Logger
}

// New builds the sink named by opts.Kind.
func New(opts Options) (async.SubscriptionSink, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	switch strings.ToLower(opts.Kind) {
	case "", KindLog:
		return NewLogSink(logger), nil
	case KindMemory:
		return &MemorySink{}, nil
	case KindWebhook:
		if opts.WebhookURL == "" {
			return nil, fmt.Errorf("subscribe: webhook sink requires a URL")
		}
		return &WebhookSink{URL: opts.WebhookURL, Client: &http.Client{Timeout: opts.Timeout}}, nil
	case KindS3:
		if opts.Bucket == "" {
			return nil, fmt.Errorf("subscribe: s3 sink requires a bucket")
		}
		return &S3Sink{Client: newS3Client(opts), Bucket: opts.Bucket, Prefix: opts.Prefix}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, opts.Kind)
	}
}

func newS3Client(opts Options) *s3.Client {
	o := s3.Options{
		Region: opts.Region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     opts.AccessKeyID,
				SecretAccessKey: opts.SecretAccessKey,
				Source:          "hxsite config",
			}, nil
		})),
	}
	if opts.Endpoint != "" {
		o.BaseEndpoint = aws.String(opts.Endpoint)
		o.UsePathStyle = true
	}
	return s3.New(o)
}

// LogSink records sign-ups in the log only.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a LogSink writing to logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger.With("component", "subscribe")}
}

// Subscribe logs the address.
func (s *LogSink) Subscribe(ctx context.Context, email string) error {
	s.logger.InfoContext(ctx, "newsletter subscription", "email", email)
	return nil
}

// MemorySink keeps sign-ups in memory.
type MemorySink struct {
	mu     sync.Mutex
	emails []string
	// Err, when set, is returned by every Subscribe call.
	Err error
}

// Subscribe appends email, or returns Err.
func (s *MemorySink) Subscribe(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.emails = append(s.emails, email)
	return nil
}

// Emails returns the addresses received so far.
func (s *MemorySink) Emails() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.emails...)
}
