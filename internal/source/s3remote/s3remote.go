// Package s3remote materializes log shards stored in an S3 bucket as local
// files, so the extraction core never has to know where logs came from.
// Objects already present locally are not fetched again, which makes remote
// runs resumable.
package s3remote

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// api is the narrow slice of the S3 client this package uses. Tests provide
// a stub; production uses *s3.Client.
type api interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Source lists and downloads *.log objects under a bucket prefix.
type Source struct {
	client  api
	bucket  string
	prefix  string
	destDir string
}

// New builds a Source using the SDK's default credential chain.
func New(ctx context.Context, bucket, prefix, destDir string) (*Source, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3remote: load AWS config: %w", err)
	}
	return newWithClient(s3.NewFromConfig(cfg), bucket, prefix, destDir), nil
}

func newWithClient(client api, bucket, prefix, destDir string) *Source {
	return &Source{client: client, bucket: bucket, prefix: prefix, destDir: destDir}
}

// Shards downloads any missing *.log objects under the prefix into the
// destination directory and returns the local paths, sorted.
func (s *Source) Shards(ctx context.Context) ([]string, error) {
	keys, err := s.listLogKeys(ctx)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(keys))
	for _, key := range keys {
		local, err := s.fetch(ctx, key)
		if err != nil {
			return nil, err
		}
		paths = append(paths, local)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *Source) listLogKeys(ctx context.Context) ([]string, error) {
	var keys []string
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("s3remote: list s3://%s/%s: %w", s.bucket, s.prefix, err)
		}
		for _, obj := range out.Contents {
			if obj.Key != nil && strings.HasSuffix(*obj.Key, ".log") {
				keys = append(keys, *obj.Key)
			}
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		token = out.NextContinuationToken
	}
	return keys, nil
}

// fetch downloads one object unless it already exists locally. The key's
// path structure is preserved under the destination directory.
func (s *Source) fetch(ctx context.Context, key string) (string, error) {
	local := filepath.Join(s.destDir, filepath.FromSlash(key))
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return "", fmt.Errorf("s3remote: create %s: %w", filepath.Dir(local), err)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("s3remote: get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	// Download to a temp name first so an interrupted fetch is retried.
	tmp := local + ".partial"
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("s3remote: create %s: %w", tmp, err)
	}
	if _, err := io.Copy(f, out.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("s3remote: download s3://%s/%s: %w", s.bucket, key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("s3remote: close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, local); err != nil {
		return "", fmt.Errorf("s3remote: finalize %s: %w", local, err)
	}
	return local, nil
}
