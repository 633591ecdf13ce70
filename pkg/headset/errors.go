package headset

import "errors"

var (
	// ErrExecutableNotFound is returned when headsetcontrol cannot be located.
	ErrExecutableNotFound = errors.New("headsetcontrol executable not found")

	// ErrProcessFailed is returned when headsetcontrol exits non-zero or cannot be started.
	ErrProcessFailed = errors.New("headsetcontrol execution failed")

	// ErrOutputParse is returned when the output of headsetcontrol cannot be understood.
	ErrOutputParse = errors.New("failed to parse headsetcontrol output")

	// ErrTimeout is returned when headsetcontrol does not finish in time.
	ErrTimeout = errors.New("headsetcontrol timed out")
)

// Classify maps an error returned by a Reader onto a Kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrExecutableNotFound):
		return KindExecutableNotFound
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrOutputParse):
		return KindParseFailed
	default:
		return KindProcessFailed
	}
}
