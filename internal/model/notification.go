package model

// Action identifies a user-triggered mutation.
type Action string

const (
	ActionCancel  Action = "cancel"
	ActionRetry   Action = "retry"
	ActionDelete  Action = "delete"
	ActionGrant   Action = "grant"
	ActionRevoke  Action = "revoke"
	ActionReorder Action = "reorder"
)

// NotificationLevel represents the severity of a notification.
type NotificationLevel string

const (
	// NotificationSuccess reports a confirmed mutation.
	NotificationSuccess NotificationLevel = "success"
	// NotificationWarning reports a settled mutation that needed no rollback
	// (e.g. the entity was already gone).
	NotificationWarning NotificationLevel = "warning"
	// NotificationFailure reports a rolled-back mutation.
	NotificationFailure NotificationLevel = "failure"
)

// Notification is a user-visible report of a settled mutation.
type Notification struct {
	Level    NotificationLevel
	Action   Action
	EntityID string
	Message  string
	// Retry marks failures worth retrying (transport faults, server
	// errors) as opposed to rejections that will fail again.
	Retry bool
}
