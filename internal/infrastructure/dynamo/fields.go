package dynamo

// DynamoDB attribute names used in update and filter expressions across all repos.
const (
	fieldEnable        = "enable"
	fieldDeletedAt     = "deleted_at"
	fieldRevokedAt     = "revoked_at"
	fieldUpdatedAt     = "updated_at"
	fieldAttempts      = "attempts"
	fieldVerifiedAt    = "verified_at"
	fieldStatus        = "status"
	fieldCompletedAt   = "completed_at"
	fieldLastMessage   = "last_message"
	fieldLastMessageAt = "last_message_at"
)
