package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Job validation.
	ErrBadJob     = "E_BAD_JOB"
	ErrSizeRange  = "E_SIZE_RANGE"
	ErrJobRunning = "E_JOB_RUNNING"

	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadJob:          {},
	ErrSizeRange:       {},
	ErrJobRunning:      {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
