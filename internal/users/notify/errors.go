package notify

import "fmt"

// Channels a registration is announced on.
const (
	ChannelWebhook = "webhook"
	ChannelEmail   = "email"
)

// DeliveryError reports a failed notification attempt. It is logged by the
// fan-out and never reaches the API caller.
type DeliveryError struct {
	Channel string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s notification failed: %v", e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
