// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// User-facing messages returned by the upload boundary. Each failure mode has
// its own message so clients can tell them apart.
const (
	UploadOK             = "File uploaded successfully."
	UploadMissingFile    = "No file found."
	UploadMissingOrderID = "No orderId found."
	UploadFailed         = "Error processing upload."
)

// UploadAck is the acknowledgement returned for an accepted document.
type UploadAck struct {
	Message string `json:"message" yaml:"message"`
	OrderID string `json:"orderId" yaml:"order_id"`

	// URL is the reference locator of the stored document.
	URL string `json:"url" yaml:"url"`
}

// UploadReceipt is the ledger row kept for every accepted document.
type UploadReceipt struct {
	OrderID    string    `json:"orderId" yaml:"order_id"`
	FileName   string    `json:"fileName" yaml:"file_name"`
	Size       int64     `json:"size" yaml:"size"`
	SHA256     string    `json:"sha256" yaml:"sha256"`
	URL        string    `json:"url" yaml:"url"`
	ReceivedAt time.Time `json:"receivedAt" yaml:"received_at"`
}
