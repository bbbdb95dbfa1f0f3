package wordpress

import "fmt"

// FetchError indicates a WordPress request failed with a non-2xx status or a
// transport error.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wordpress fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("wordpress fetch %s: HTTP %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }
