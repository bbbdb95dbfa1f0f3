package prestashop

import (
	"errors"
	"fmt"
)

// ErrInvalidAPIKey indicates the Webservice rejected the key.
var ErrInvalidAPIKey = errors.New("invalid PrestaShop API key")

// WriteError indicates a create or update against the Webservice failed.
type WriteError struct {
	Op         string // "create" or "update"
	StatusCode int
	Detail     string
}

func (e *WriteError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("prestashop %s failed: HTTP %d: %s", e.Op, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("prestashop %s failed: HTTP %d", e.Op, e.StatusCode)
}

// UploadError indicates an image could not be stored on the shop.
type UploadError struct {
	Filename   string
	StatusCode int
	Detail     string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("prestashop upload %s failed: HTTP %d: %s", e.Filename, e.StatusCode, e.Detail)
}
