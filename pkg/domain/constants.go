package domain

// Webhook split conventions.
const (
	WebhookOperand = "@run.webhook.status"

	WebhookStatusSuccess         = "success"
	WebhookStatusResponseError   = "response_error"
	WebhookStatusConnectionError = "connection_error"

	WebhookExitSuccess     = "Success"
	WebhookExitFailure     = "Failure"
	WebhookExitUnreachable = "Unreachable"
)

// Sub-flow split conventions.
const (
	StartFlowOperand = "@child"

	StartFlowArgComplete = "completed"
	StartFlowArgExpired  = "expired"

	StartFlowExitComplete = "Complete"
	StartFlowExitExpired  = "Expired"
)

// Other well-known operands.
const (
	InputOperand  = "@input"
	GroupsOperand = "@contact.groups"
)
