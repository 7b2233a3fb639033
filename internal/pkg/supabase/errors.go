package supabase

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/tidwall/gjson"
)

// ErrNotFound is returned by SelectRow when no row matches (PostgREST PGRST116).
var ErrNotFound = errors.New("no matching row")

const noRowsCode = "PGRST116"

// Error is a failure reported by the backend. Message is meant to be shown to
// the user as is.
type Error struct {
	Status  int
	Code    string
	Message string
	err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.err }

var (
	authErrorRegex = regexp.MustCompile(`(?s)^response status code (\d+)(?:: (.*))?$`)
	restErrorRegex = regexp.MustCompile(`(?s)^\(([^)]*)\) (.*)$`)
)

// authError turns the "response status code N: body" errors of gotrue-go
// into an *Error carrying the backend's own message.
func authError(err error) error {
	if err == nil {
		return nil
	}

	m := authErrorRegex.FindStringSubmatch(err.Error())
	if m == nil {
		return &Error{Message: err.Error(), err: err}
	}

	status, _ := strconv.Atoi(m[1])
	out := &Error{Status: status, Message: "Request failed with status " + m[1], err: err}

	body := strings.TrimSpace(m[2])
	if body == "" {
		return out
	}
	if !gjson.Valid(body) {
		out.Message = body
		return out
	}

	fields := gjson.GetMany(body, "msg", "message", "error_description", "error", "error_code")
	out.Code = firstNonEmpty(fields[4].String(), fields[3].String())
	if msg := firstNonEmpty(fields[0].String(), fields[1].String(), fields[2].String(), fields[3].String()); msg != "" {
		out.Message = msg
	}
	return out
}

// restError maps postgrest-go's "(code) message" errors.
func restError(err error) error {
	if err == nil {
		return nil
	}

	m := restErrorRegex.FindStringSubmatch(err.Error())
	if m == nil {
		return &Error{Message: err.Error(), err: err}
	}
	if m[1] == noRowsCode {
		return ErrNotFound
	}
	return &Error{Code: m[1], Message: m[2], err: err}
}

func storageError(err error) error {
	if err == nil {
		return nil
	}

	var se *storage_go.StorageError
	if errors.As(err, &se) {
		msg := se.Message
		if msg == "" {
			msg = "Upload failed"
		}
		return &Error{Status: se.Status, Message: msg, err: err}
	}
	return &Error{Message: err.Error(), err: err}
}

// Message returns what should be shown to the user for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
