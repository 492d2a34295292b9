package auth

import "github.com/goliatone/go-router"

// Envelope status values
const (
	StatusSuccess = "Success"
	StatusFail    = "Fail"
	// StatusFailed is used by the ownership guard
	StatusFailed = "Failed"
)

// Response is the JSON envelope shared by all handlers
type Response struct {
	Status   string `json:"status,omitempty"`
	Message  string `json:"message,omitempty"`
	Data     any    `json:"data,omitempty"`
	LoggedIn *bool  `json:"loggedIn,omitempty"`
	Error    any    `json:"error,omitempty"`
}

func loggedIn(v bool) *bool {
	return &v
}

func sendJSON(c router.Context, status int, res Response) error {
	return c.JSON(status, res)
}
