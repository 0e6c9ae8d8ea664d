package publish

import (
	"fmt"
	"os"
)

// Config controls uploading generated HTML to an S3-compatible bucket.
// Publishing is enabled only when Bucket is set.
type Config struct {
	Bucket          string
	Region          string
	KeyPrefix       string
	EndpointURL     string
	AccessKeyID     string
	SecretAccessKey string
}

func (c *Config) Enabled() bool {
	return c != nil && c.Bucket != ""
}

// ApplyEnv fills unset fields from S3_* and AWS_* environment variables.
// Priority: CLI flags > Environment variables > Defaults
func (c *Config) ApplyEnv() {
	set := func(dst *string, key string) {
		if *dst != "" {
			return
		}
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Bucket, "S3_BUCKET")
	set(&c.Region, "S3_REGION")
	set(&c.Region, "AWS_REGION")
	set(&c.KeyPrefix, "S3_KEY_PREFIX")
	set(&c.EndpointURL, "S3_ENDPOINT_URL")
	set(&c.AccessKeyID, "AWS_ACCESS_KEY_ID")
	set(&c.SecretAccessKey, "AWS_SECRET_ACCESS_KEY")
}

func (c *Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("S3 bucket cannot be empty")
	}
	if c.Region == "" {
		return fmt.Errorf("S3 region cannot be empty")
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return fmt.Errorf("access key id and secret access key must be set together")
	}
	return nil
}
