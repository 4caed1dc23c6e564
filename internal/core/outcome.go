package core

// ResultReason tags a synthesis outcome.
type ResultReason int

const (
	// ReasonCompleted means the service returned audio.
	ReasonCompleted ResultReason = iota
	// ReasonCanceled means the service ended the request without audio.
	ReasonCanceled
)

// String returns the service's name for the reason.
func (r ResultReason) String() string {
	switch r {
	case ReasonCompleted:
		return "SynthesizingAudioCompleted"
	case ReasonCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// CancellationReason explains why a request was canceled.
type CancellationReason int

const (
	// CancellationError means the service or transport reported an error.
	CancellationError CancellationReason = iota + 1
	// CancellationEndOfStream means the audio stream ended prematurely.
	CancellationEndOfStream
	// CancellationByUser means the caller abandoned the request.
	CancellationByUser
)

// String returns the service's name for the cancellation reason.
func (r CancellationReason) String() string {
	switch r {
	case CancellationError:
		return "Error"
	case CancellationEndOfStream:
		return "EndOfStream"
	case CancellationByUser:
		return "CancelledByUser"
	default:
		return "Unknown"
	}
}

// ErrorCode classifies a cancellation with reason Error.
type ErrorCode string

// Error codes reported by the speech service.
const (
	ErrorCodeNone                  ErrorCode = "NoError"
	ErrorCodeAuthenticationFailure ErrorCode = "AuthenticationFailure"
	ErrorCodeBadRequest            ErrorCode = "BadRequest"
	ErrorCodeTooManyRequests       ErrorCode = "TooManyRequests"
	ErrorCodeForbidden             ErrorCode = "Forbidden"
	ErrorCodeConnectionFailure     ErrorCode = "ConnectionFailure"
	ErrorCodeServiceTimeout        ErrorCode = "ServiceTimeout"
	ErrorCodeServiceError          ErrorCode = "ServiceError"
	ErrorCodeServiceUnavailable    ErrorCode = "ServiceUnavailable"
	ErrorCodeRuntimeError          ErrorCode = "RuntimeError"
)

// Cancellation carries the details of a canceled request. ErrorCode and
// ErrorDetails are only populated when Reason is CancellationError.
type Cancellation struct {
	Reason       CancellationReason
	ErrorCode    ErrorCode
	ErrorDetails string
}

// Outcome is the result of one synthesis request: either completed audio
// or a cancellation descriptor, never both.
type Outcome struct {
	Cancellation *Cancellation
	Audio        []byte
	Reason       ResultReason
}

// Completed builds a successful outcome.
func Completed(audio []byte) Outcome {
	return Outcome{
		Cancellation: nil,
		Audio:        audio,
		Reason:       ReasonCompleted,
	}
}

// Canceled builds a cancellation outcome.
func Canceled(cancellation Cancellation) Outcome {
	return Outcome{
		Cancellation: &cancellation,
		Audio:        nil,
		Reason:       ReasonCanceled,
	}
}

// CanceledWithError builds a cancellation outcome with reason Error.
func CanceledWithError(code ErrorCode, details string) Outcome {
	return Canceled(Cancellation{
		Reason:       CancellationError,
		ErrorCode:    code,
		ErrorDetails: details,
	})
}

// IsCompleted reports whether the outcome carries audio.
func (o Outcome) IsCompleted() bool {
	return o.Reason == ReasonCompleted
}
