package provider

import "fmt"

// StatusError reports a non-2xx upstream response. The orchestrator maps it
// to a bad-status failure and advances to the next provider in the chain.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Code, e.Body)
}
