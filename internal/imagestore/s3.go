package imagestore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PresignExpiry is how long a redirect URL for an image stays valid.
const PresignExpiry = 15 * time.Minute

// objectPutter is the slice of *s3.Client that S3 uses.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// getPresigner is the slice of *s3.PresignClient that S3 uses.
type getPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3 stores images as objects under prefix in bucket.
type S3 struct {
	bucket    string
	prefix    string
	client    objectPutter
	presigner getPresigner
	logger    *slog.Logger
}

var _ Store = (*S3)(nil)

// NewS3 loads AWS credentials the standard way (env, shared config, IMDS).
// An empty region leaves the SDK's own resolution in place.
func NewS3(ctx context.Context, bucket, prefix, region string, logger *slog.Logger) (*S3, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("imagestore: loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return newS3(bucket, prefix, client, s3.NewPresignClient(client), logger), nil
}

func newS3(bucket, prefix string, client objectPutter, presigner getPresigner, logger *slog.Logger) *S3 {
	return &S3{
		bucket:    bucket,
		prefix:    prefix,
		client:    client,
		presigner: presigner,
		logger:    logger,
	}
}

func (s *S3) key(name string) string {
	return s.prefix + name
}

// Save uploads r as a new object. A seekable r (multipart files are) lets
// the SDK compute the content length itself.
func (s *S3) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	name := NewFilename(originalName)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   r,
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("imagestore: uploading %s to s3://%s: %w", name, s.bucket, err)
	}
	return name, nil
}

// Handler redirects to a presigned GET URL for the requested image.
func (s *S3) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := cleanName(r.URL.Path)
		if name == "" {
			http.NotFound(w, r)
			return
		}

		req, err := s.presigner.PresignGetObject(r.Context(), &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key(name)),
		}, s3.WithPresignExpires(PresignExpiry))
		if err != nil {
			s.logger.Error("failed to presign image URL",
				slog.String("image", name),
				slog.String("error", err.Error()),
			)
			http.Error(w, "image unavailable", http.StatusBadGateway)
			return
		}

		http.Redirect(w, r, req.URL, http.StatusTemporaryRedirect)
	})
}
