package subscribe

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the part of *s3.Client the S3 sink uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink stores one JSON object per subscriber. The key is derived from the
// normalized address, so subscribing twice overwrites the same object.
type S3Sink struct {
	Client ObjectPutter
	Bucket string
	Prefix string

	now func() time.Time
}

type subscriberRecord struct {
	Email        string `json:"email"`
	SubscribedAt string `json:"subscribed_at"`
}

// Subscribe writes the subscriber record.
func (s *S3Sink) Subscribe(ctx context.Context, email string) error {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	body, err := json.Marshal(subscriberRecord{
		Email:        email,
		SubscribedAt: now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("subscribe: encode record: %w", err)
	}

	_, err = s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(s.Key(email)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("subscribe: s3 put: %w", err)
	}
	return nil
}

// Key returns the object key for email.
func (s *S3Sink) Key(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return s.Prefix + hex.EncodeToString(sum[:]) + ".json"
}
