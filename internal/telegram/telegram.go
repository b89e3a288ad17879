package telegram

// Client delivers best-effort run reports. Sends never propagate errors to
// the pipeline; delivery failures are logged by the implementation.
type Client interface {
	SendMessageToUser(msg string)
	SendMessageToChannel(msg string)
}
