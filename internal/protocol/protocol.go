package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeWelcome  = "WELCOME"
	TypeRun      = "RUN"
	TypeProgress = "PROGRESS"
	TypeResult   = "RESULT"
	TypeError    = "ERROR"
)

// Job kinds a RUN message may carry.
const (
	JobGenerate = "GENERATE"
	JobCount    = "COUNT"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
