package codec

import (
	"errors"
	"fmt"
	"strings"
)

// Moderation actions carried inside control identifiers.
const (
	ActionApprove  = "approve"
	ActionReject   = "reject"
	ActionDelete   = "delete"
	ActionEdit     = "edit"
	ActionJoin     = "join"
	ActionTransfer = "transfer"
)

// ErrBadControlID indicates a custom ID that is not a control identifier.
var ErrBadControlID = errors.New("codec: not a control id")

// ControlID identifies one interactive control deterministically, so that a
// restarted process can rebuild a functionally identical control without any
// in-memory state.
type ControlID struct {
	Context     string
	Action      string
	RequesterID string
}

// FormatControlID renders a control identifier as {context}_{action}_{requesterId}.
func FormatControlID(context, action, requesterID string) string {
	return fmt.Sprintf("%s_%s_%s", context, action, requesterID)
}

// ParseControlID parses {context}_{action}_{requesterId}. The context may
// itself contain underscores, so parsing walks from the right: the last
// segment is the requester id (digits only), the one before it the action.
func ParseControlID(customID string) (ControlID, error) {
	last := strings.LastIndex(customID, "_")
	if last <= 0 {
		return ControlID{}, ErrBadControlID
	}
	requester := customID[last+1:]
	if requester == "" || StaticDigits(requester) != requester {
		return ControlID{}, ErrBadControlID
	}
	rest := customID[:last]
	mid := strings.LastIndex(rest, "_")
	if mid <= 0 {
		return ControlID{}, ErrBadControlID
	}
	action := rest[mid+1:]
	context := rest[:mid]
	if action == "" || context == "" {
		return ControlID{}, ErrBadControlID
	}
	return ControlID{Context: context, Action: action, RequesterID: requester}, nil
}
