package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/qrshare/qrshare-go/common/config"
	"github.com/qrshare/qrshare-go/monitor"
)

// UploadProgressEvent reports transport progress for one upload call.
// Events are emitted with monotonically non-decreasing BytesSent. A 100%
// event is emitted only when the upload succeeded end to end; a stream that
// ends below 100% means the outcome was a failure.
type UploadProgressEvent struct {
	BytesSent  int64
	BytesTotal int64
	Percent    int
}

// Upload is an in-flight upload: a stream of progress events terminated by
// exactly one result. Events is closed before Wait returns.
type Upload struct {
	Events <-chan UploadProgressEvent

	done chan struct{}
	env  *Envelope
	err  error
}

// Wait blocks until the upload reaches its terminal state.
func (u *Upload) Wait() (*Envelope, error) {
	<-u.done
	return u.env, u.err
}

// Upload sends content as the single multipart "file" field of an
// authenticated POST. Uploads bypass the retry/timeout machinery: progress
// reporting and that abstraction do not compose, so a failed upload must be
// reissued by the caller. For the same reason only WithHeader and
// WithSkipAuth are honored here; WithTimeout and WithRetries have no effect
// on uploads. Cancel via ctx; cancellation is a terminal failure with
// status 0 and a distinguished message.
//
// Unlike ordinary calls, a 2xx body that does not parse is a fatal error.
func (c *Client) Upload(ctx context.Context, path, filename string, content []byte, opts ...RequestOption) *Upload {
	var d RequestDescriptor
	for _, opt := range opts {
		opt(&d)
	}

	events := make(chan UploadProgressEvent, 64)
	u := &Upload{Events: events, done: make(chan struct{})}

	go func() {
		defer close(u.done)
		defer close(events)
		u.env, u.err = c.runUpload(ctx, path, filename, content, d, events)
	}()
	return u
}

func (c *Client) runUpload(ctx context.Context, path, filename string, content []byte, d RequestDescriptor, events chan<- UploadProgressEvent) (*Envelope, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, errors.Wrap(err, "create multipart field")
	}
	if _, err := part.Write(content); err != nil {
		return nil, errors.Wrap(err, "write multipart payload")
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "finalize multipart body")
	}

	total := int64(buf.Len())
	reader := &progressReader{
		r:     &buf,
		total: total,
		emit: func(ev UploadProgressEvent) {
			select {
			case events <- ev:
			default:
				// nobody draining; progress is advisory, drop the tick
			}
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), reader)
	if err != nil {
		return nil, &APIError{StatusCode: 0, Message: "build request", RawError: err}
	}
	req.ContentLength = total
	// the multipart writer picked the boundary, let it set the content type
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if !d.SkipAuth {
		if token := c.store.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for k, v := range d.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return nil, &APIError{StatusCode: 0, Message: "upload canceled", RawError: err}
		}
		return nil, &APIError{StatusCode: 0, Message: "network error", RawError: err}
	}
	defer resp.Body.Close()
	monitor.AddUploadBytes(reader.sent)

	body, err := io.ReadAll(io.LimitReader(resp.Body, config.MaxResponseBodyBytes))
	if err != nil {
		return nil, &APIError{StatusCode: 0, Message: "network error", RawError: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := parseErrorBody(resp.StatusCode, body)
		c.logger.Warn("upload failed",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("error_message", apiErr.Message),
		)
		return nil, apiErr
	}

	// strict parse: an upload response we cannot decode is fatal
	var probe any
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    "invalid upload response body",
			Code:       "parse_error",
			RawError:   err,
		}
	}
	env := decodeEnvelope(body)
	reader.emit(UploadProgressEvent{BytesSent: reader.sent, BytesTotal: total, Percent: 100})
	return &env, nil
}

// progressReader counts bytes as the transport consumes the request body
// and emits one progress event per read.
type progressReader struct {
	r     io.Reader
	sent  int64
	total int64
	emit  func(UploadProgressEvent)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		// the 100% tick is withheld: the server consuming the whole body
		// says nothing about the outcome, so the terminal event is emitted
		// by the caller once the upload is known to have succeeded
		if p.sent < p.total {
			p.emit(UploadProgressEvent{
				BytesSent:  p.sent,
				BytesTotal: p.total,
				Percent:    int(p.sent * 100 / p.total),
			})
		}
	}
	return n, err
}
