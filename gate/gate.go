// Package gate is a small Gate/Policy authorization toolkit.
//
// A HybridGate first checks the permissions of the subject's Profile
// ("service:delete", "order:view", ...), then the policy registered for the
// resource type when a concrete resource is given. U is the subject type,
// uint user ids in this application.
package gate

import (
	"context"
	"errors"
)

// Action describes the kind of operation a subject wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ErrUnauthorized is returned by Authorize on any denial.
var ErrUnauthorized = errors.New("unauthorized")

// Policy decides whether user may perform action on resource.
// resource is nil for list/create style checks.
type Policy[U any] interface {
	Can(ctx context.Context, user U, action Action, resource any) bool
}
