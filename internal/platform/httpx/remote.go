package httpx

import "fmt"

// RemoteError carries a failure reported by the upstream API so handlers can
// surface the backend's own message to the user.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned status %d", e.Status)
	}
	return e.Message
}
