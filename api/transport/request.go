package transport

// CommandRequest is the body of POST /api/command.
type CommandRequest struct {
	Message string `json:"message"`
}
