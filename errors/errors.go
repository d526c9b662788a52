package errors

import "fmt"

var (
	ErrEmptyContent   = fmt.Errorf("message content is empty")
	ErrNotSender      = fmt.Errorf("only the original sender may modify a message")
	ErrToggleInFlight = fmt.Errorf("flag toggle already in flight for this pair")
	ErrChannelClosed  = fmt.Errorf("chat channel is closed")
	ErrUnauthorized   = fmt.Errorf("not authorized")
	ErrUnknownFrame   = fmt.Errorf("unknown frame kind")
	ErrInvalidToken   = fmt.Errorf("credential token is malformed")
	ErrUnknownMessage = fmt.Errorf("message not present in the log")
	ErrUnknownPair    = fmt.Errorf("pair has not been reconciled yet")
)
