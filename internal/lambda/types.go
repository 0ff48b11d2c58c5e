package lambda

// Response is the handler's envelope: an HTTP-style status code plus a
// structured body. Scheduled invocations have no caller to read it, but the
// envelope keeps manual test invocations readable in the console.
type Response struct {
	StatusCode int          `json:"statusCode"`
	Body       ResponseBody `json:"body"`
}

// ResponseBody summarizes one pipeline run.
type ResponseBody struct {
	Message          string  `json:"message"`
	RecordsProcessed int     `json:"records_processed,omitempty"`
	ExecutionSeconds float64 `json:"execution_time_seconds,omitempty"`
	Error            string  `json:"error,omitempty"`
}
