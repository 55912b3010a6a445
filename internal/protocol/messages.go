package protocol

// WELCOME (server -> client): sent once per connection, announcing the
// size limits the server enforces.
type WelcomeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	SessionID       string `json:"session_id"`
	MaxGenerate     int    `json:"max_generate"`
	MaxCount        int    `json:"max_count"`
}

// RUN (client -> server): start a generate or count job.
type RunMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
	Job             string `json:"job"`
	Size            int    `json:"size"`
	UseCache        bool   `json:"use_cache,omitempty"`
	Symmetry        bool   `json:"symmetry,omitempty"`
}

// PROGRESS (server -> client): coarse completion ticks for a running job.
type ProgressMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	JobID           string `json:"job_id"`
	Done            int    `json:"done"`
	Total           int    `json:"total"`
}

// RESULT (server -> client): terminal message for a job.
type ResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	JobID           string `json:"job_id"`
	Job             string `json:"job"`
	Size            int    `json:"size"`
	Count           uint64 `json:"count"`
	Exact           bool   `json:"exact"`
	DurationMS      int64  `json:"duration_ms"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}
