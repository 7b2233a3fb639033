// Package photos uploads dater photos to the storage bucket.
package photos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/illegalcall/tracys-match/internal/pkg/supabase"
)

const (
	maxConcurrentUploads = 3
	cacheControl         = "3600"
)

var (
	ErrTooLarge = errors.New("file is too large")
	ErrNotImage = errors.New("only image files can be uploaded")
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Uploader is the part of the Supabase client this package needs.
type Uploader interface {
	UploadFile(accessToken, bucket, path string, data io.Reader, opts supabase.UploadOptions) error
	PublicURL(bucket, path string) string
}

// Options bound what is accepted.
type Options struct {
	Bucket  string
	MaxSize int64
}

// Result is the outcome for one file. Exactly one of URL and Err is set.
type Result struct {
	Name string
	URL  string
	Err  error
}

// BuildPath names the object for a file: <owner>/<unix millis>-<random>-<name>,
// with whitespace runs in the name replaced by "-".
func BuildPath(ownerID, filename string, now time.Time) string {
	random := strconv.FormatUint(rand.Uint64()%(1<<40), 36)
	name := whitespaceRun.ReplaceAllString(strings.TrimSpace(filename), "-")
	return fmt.Sprintf("%s/%d-%s-%s", ownerID, now.UnixMilli(), random, name)
}

// UploadAll uploads every file on behalf of the account and returns one
// result per file in input order. A failed file does not stop the others.
func UploadAll(ctx context.Context, up Uploader, ownerID, accessToken string, files []*multipart.FileHeader, opts Options) []Result {
	results := make([]Result, len(files))

	var g errgroup.Group
	g.SetLimit(maxConcurrentUploads)

	for i, fh := range files {
		results[i].Name = fh.Filename
		if err := check(fh, opts); err != nil {
			results[i].Err = err
			continue
		}

		g.Go(func() error {
			if ctx.Err() != nil {
				results[i].Err = ctx.Err()
				return nil
			}
			url, err := uploadOne(up, ownerID, accessToken, fh, opts)
			results[i].URL = url
			results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// URLs returns the public URLs of the successful results, in order.
func URLs(results []Result) []string {
	var urls []string
	for _, r := range results {
		if r.Err == nil {
			urls = append(urls, r.URL)
		}
	}
	return urls
}

// Failures returns one "name: message" line per failed file.
func Failures(results []Result) []string {
	var out []string
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r.Name+": "+supabase.Message(r.Err))
		}
	}
	return out
}

func check(fh *multipart.FileHeader, opts Options) error {
	if opts.MaxSize > 0 && fh.Size > opts.MaxSize {
		return ErrTooLarge
	}
	if ct := fh.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return ErrNotImage
	}
	return nil
}

func uploadOne(up Uploader, ownerID, accessToken string, fh *multipart.FileHeader, opts Options) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	defer f.Close()

	path := BuildPath(ownerID, fh.Filename, time.Now())
	err = up.UploadFile(accessToken, opts.Bucket, path, f, supabase.UploadOptions{
		ContentType:  fh.Header.Get("Content-Type"),
		CacheControl: cacheControl,
		Upsert:       false,
	})
	if err != nil {
		return "", err
	}
	return up.PublicURL(opts.Bucket, path), nil
}
