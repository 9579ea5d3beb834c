package client

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"

	apperrors "github.com/campuscash/campuscash-go/pkg/errors"
)

// Upload sends a file as multipart form data. The JSON content type is
// deliberately omitted so the transport can set the multipart boundary; the
// bearer token is still attached.
func (c *Client) Upload(ctx context.Context, endpoint, fieldName, filename string, r io.Reader, dest interface{}) error {
	if fieldName == "" {
		fieldName = "file"
	}

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	part, err := writer.CreateFormFile(fieldName, filename)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, 0, "failed to build multipart body")
	}
	if _, err := io.Copy(part, r); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, 0, "failed to read upload content")
	}
	if err := writer.Close(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, 0, "failed to finalise multipart body")
	}

	headers := http.Header{}
	headers.Set("Content-Type", writer.FormDataContentType())
	headers.Set("Accept", "application/json")

	return c.do(ctx, http.MethodPost, endpoint, headers, buf, dest)
}
