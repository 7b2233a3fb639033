package photos

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/textproto"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illegalcall/tracys-match/internal/pkg/supabase"
)

type fakeUploader struct {
	mu       sync.Mutex
	uploaded map[string]string
	opts     []supabase.UploadOptions
	fail     map[string]bool

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeUploader) UploadFile(_, bucket, path string, data io.Reader, opts supabase.UploadOptions) error {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)

	body, _ := io.ReadAll(data)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opts = append(f.opts, opts)
	for suffix := range f.fail {
		if strings.HasSuffix(path, suffix) {
			return &supabase.Error{Status: 400, Message: "The resource already exists"}
		}
	}
	f.uploaded[bucket+"/"+path] = string(body)
	return nil
}

func (f *fakeUploader) PublicURL(bucket, path string) string {
	return "https://cdn.example.com/" + bucket + "/" + path
}

type upload struct {
	name, contentType, body string
}

// fileHeaders builds real multipart headers the way fiber hands them over.
func fileHeaders(t *testing.T, uploads ...upload) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, u := range uploads {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="photos"; filename="`+u.name+`"`)
		h.Set("Content-Type", u.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(u.body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["photos"]
}

func TestBuildPath(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	path := BuildPath("user-1", "  my summer\t photo.jpg ", now)

	assert.Regexp(t, regexp.MustCompile(`^user-1/1700000000123-[0-9a-z]+-my-summer-photo\.jpg$`), path)
	assert.NotEqual(t, path, BuildPath("user-1", "my summer photo.jpg", now), "random part should differ")
}

func TestUploadAllKeepsOrderAndPartialFailures(t *testing.T) {
	up := &fakeUploader{uploaded: map[string]string{}, fail: map[string]bool{"-dupe.jpg": true}}
	files := fileHeaders(t,
		upload{"a.jpg", "image/jpeg", "aaa"},
		upload{"dupe.jpg", "image/jpeg", "ddd"},
		upload{"notes.txt", "text/plain", "hello"},
		upload{"b.png", "image/png", "bbb"},
		upload{"c.png", "image/png", "ccc"},
		upload{"d.png", "image/png", "ddd"},
	)

	results := UploadAll(context.Background(), up, "user-1", "tok", files, Options{Bucket: "profile-photos", MaxSize: 1 << 20})
	require.Len(t, results, 6)

	names := []string{"a.jpg", "dupe.jpg", "notes.txt", "b.png", "c.png", "d.png"}
	for i, r := range results {
		assert.Equal(t, names[i], r.Name)
	}

	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Error(t, results[2].Err)
	assert.NoError(t, results[3].Err)

	urls := URLs(results)
	require.Len(t, urls, 4)
	assert.Contains(t, urls[0], "a.jpg")
	assert.Contains(t, urls[1], "b.png")
	assert.Contains(t, urls[2], "c.png")
	assert.Contains(t, urls[3], "d.png")
	for _, u := range urls {
		assert.True(t, strings.HasPrefix(u, "https://cdn.example.com/profile-photos/user-1/"))
	}

	assert.Equal(t, []string{
		"dupe.jpg: The resource already exists",
		"notes.txt: only image files can be uploaded",
	}, Failures(results))

	assert.LessOrEqual(t, up.maxInFlight.Load(), int32(maxConcurrentUploads))
	for _, o := range up.opts {
		assert.Equal(t, "3600", o.CacheControl)
		assert.False(t, o.Upsert)
		assert.True(t, strings.HasPrefix(o.ContentType, "image/"))
	}
}

func TestUploadAllRejectsLargeFiles(t *testing.T) {
	up := &fakeUploader{uploaded: map[string]string{}}
	files := fileHeaders(t, upload{"big.jpg", "image/jpeg", strings.Repeat("x", 2048)})

	results := UploadAll(context.Background(), up, "user-1", "tok", files, Options{Bucket: "profile-photos", MaxSize: 1024})
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, ErrTooLarge)
	assert.Empty(t, up.uploaded)
}

func TestUploadAllCancelled(t *testing.T) {
	up := &fakeUploader{uploaded: map[string]string{}}
	files := fileHeaders(t, upload{"a.jpg", "image/jpeg", "aaa"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := UploadAll(ctx, up, "user-1", "tok", files, Options{Bucket: "profile-photos"})
	assert.True(t, errors.Is(results[0].Err, context.Canceled))
	assert.Empty(t, up.uploaded)
}
