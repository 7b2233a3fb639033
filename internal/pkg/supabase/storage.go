package supabase

import (
	"io"

	storage_go "github.com/supabase-community/storage-go"
)

// UploadOptions mirrors the Storage upload headers.
type UploadOptions struct {
	ContentType  string
	CacheControl string
	Upsert       bool
}

// UploadFile stores data at path inside bucket.
func (c *Client) UploadFile(accessToken, bucket, path string, data io.Reader, opts UploadOptions) error {
	sc := storage_go.NewClient(c.url+storagePath, c.bearer(accessToken), map[string]string{"apikey": c.key})

	fileOpts := storage_go.FileOptions{Upsert: &opts.Upsert}
	if opts.ContentType != "" {
		fileOpts.ContentType = &opts.ContentType
	}
	if opts.CacheControl != "" {
		fileOpts.CacheControl = &opts.CacheControl
	}

	_, err := sc.UploadFile(bucket, path, data, fileOpts)
	return storageError(err)
}

// PublicURL returns the public address of an object in a public bucket.
func (c *Client) PublicURL(bucket, path string) string {
	sc := storage_go.NewClient(c.url+storagePath, c.key, nil)
	return sc.GetPublicUrl(bucket, path).SignedURL
}
