package loki

// pushRequest is the JSON payload sent to Loki's push API.
type pushRequest struct {
	Streams []stream `json:"streams"`
}

// stream is a set of log lines sharing one label set.
type stream struct {
	Stream map[string]string `json:"stream"`
	Values []streamValue     `json:"values"`
}

// streamValue is a [timestamp in nanoseconds, log line] tuple.
type streamValue []string

// logEntry is an encoded log line waiting to be shipped.
type logEntry struct {
	timestampNano int64
	line          string
}
