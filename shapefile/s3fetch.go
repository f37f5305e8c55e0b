package shapefile

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/swot-confluence/invsets/catalog"
)

// CredentialFunc returns the temporary S3 credentials currently on file,
// refreshing them via the broker first when forceRefresh is set.
type CredentialFunc func(ctx context.Context, forceRefresh bool) (*catalog.Credentials, error)

// NewS3FetchFunc builds a FetchFunc that resolves an s3:// granule URI and
// downloads it whole, authenticating with whatever credentials creds
// currently returns.
func NewS3FetchFunc(creds CredentialFunc) FetchFunc {
	return func(ctx context.Context, uri string) ([]byte, error) {
		c, err := creds(ctx, false)
		if err != nil {
			return nil, err
		}
		return getObject(ctx, uri, c)
	}
}

// NewS3RefreshFunc adapts a CredentialFunc into a RefreshFunc that forces
// a credential refresh, for use as Reader's RefreshFunc.
func NewS3RefreshFunc(creds CredentialFunc) RefreshFunc {
	return func(ctx context.Context) error {
		_, err := creds(ctx, true)
		return err
	}
}

func getObject(ctx context.Context, uri string, c *catalog.Credentials) ([]byte, error) {
	bucket, key, err := splitS3URI(uri)
	if err != nil {
		return nil, err
	}

	client := s3.New(s3.Options{
		Region: "us-west-2",
		Credentials: awscreds.NewStaticCredentialsProvider(
			c.AccessKeyID, c.SecretAccessKey, c.SessionToken,
		),
	})

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading s3://%s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// splitS3URI parses "s3://bucket/key/with/slashes" into its bucket and key.
func splitS3URI(uri string) (bucket, key string, err error) {
	if !strings.HasPrefix(uri, "s3://") {
		u, perr := url.Parse(uri)
		if perr != nil {
			return "", "", fmt.Errorf("parsing granule uri %s: %w", uri, perr)
		}
		return u.Host, strings.TrimPrefix(u.Path, "/"), nil
	}
	trimmed := strings.TrimPrefix(uri, "s3://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("malformed s3 uri: %s", uri)
	}
	return parts[0], parts[1], nil
}
