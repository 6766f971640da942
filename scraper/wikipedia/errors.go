package wikipedia

import "fmt"

// FetchError reports a page download that did not answer 200 OK.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// NotFoundError reports a page without any table carrying the expected class.
type NotFoundError struct {
	Class string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no tables of class %q located", e.Class)
}
