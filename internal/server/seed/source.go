package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/divvault/internal/server/config"
)

const s3Scheme = "s3://"

type objectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectGetter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// Load reads the fixture at location: "" selects the embedded default,
// "s3://bucket/key" reads from the configured S3-compatible storage, anything
// else is a local file path.
func Load(ctx context.Context, location string, cfg *sc.Config) (*Fixture, error) {
	switch {
	case location == "":
		return Default()
	case strings.HasPrefix(location, s3Scheme):
		data, err := readS3(ctx, location, cfg)
		if err != nil {
			return nil, err
		}
		return Parse(data)
	default:
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("failed to read fixture: %w", err)
		}
		return Parse(data)
	}
}

func parseS3Location(location string) (bucket, key string, err error) {
	bucket, key, ok := strings.Cut(strings.TrimPrefix(location, s3Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 location %q, want s3://bucket/key", location)
	}
	return bucket, key, nil
}

func readS3(ctx context.Context, location string, cfg *sc.Config) ([]byte, error) {
	bucket, key, err := parseS3Location(location)
	if err != nil {
		return nil, err
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fixture: %w", err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}
