// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deliver

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/propverify/internal/httputil"
	"github.com/pdiddy/propverify/pkg/types"
)

// UploadClient sends documents to the upload boundary. A failed upload is
// reported once and never retried; the local artifact is unaffected.
type UploadClient struct {
	URL    string
	Client *http.Client
	Logger *zap.Logger
}

// Upload posts doc for orderID as a multipart form with fields "orderId" and
// "file" (named "<orderId>-report.pdf").
func (u *UploadClient) Upload(ctx context.Context, orderID string, doc []byte) (*types.UploadAck, error) {
	if len(doc) == 0 {
		return nil, ErrMissingPayload
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, ErrMissingIdentifier
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("orderId", orderID); err != nil {
		return nil, fmt.Errorf("%w: building form: %w", ErrUpload, err)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, FileName(orderID)))
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("%w: building form: %w", ErrUpload, err)
	}
	if _, err := part.Write(doc); err != nil {
		return nil, fmt.Errorf("%w: building form: %w", ErrUpload, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%w: building form: %w", ErrUpload, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.URL, &body)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", ErrUpload, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	client := u.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := httputil.ErrorMessage(resp)
		switch {
		case resp.StatusCode == http.StatusBadRequest && msg == types.UploadMissingFile:
			return nil, fmt.Errorf("%w: %s", ErrMissingPayload, msg)
		case resp.StatusCode == http.StatusBadRequest && msg == types.UploadMissingOrderID:
			return nil, fmt.Errorf("%w: %s", ErrMissingIdentifier, msg)
		default:
			return nil, fmt.Errorf("%w: server returned %d: %s", ErrUpload, resp.StatusCode, msg)
		}
	}

	var ack types.UploadAck
	if err := httputil.DecodeJSON(resp, &ack); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}

	u.logger().Info("report uploaded", zap.String("order_id", ack.OrderID), zap.String("url", ack.URL))
	return &ack, nil
}

func (u *UploadClient) logger() *zap.Logger {
	if u.Logger == nil {
		return zap.NewNop()
	}
	return u.Logger
}
