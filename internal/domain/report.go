package domain

import "time"

// ReportStatus enumerates report lifecycle states.
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "PENDING"
	ReportStatusReviewing ReportStatus = "REVIEWING"
	ReportStatusResolved  ReportStatus = "RESOLVED"
	ReportStatusDismissed ReportStatus = "DISMISSED"
)

// Open reports whether the report still awaits a disposition.
func (s ReportStatus) Open() bool {
	return s == ReportStatusPending || s == ReportStatusReviewing
}

// Closed reports whether the report reached a terminal state.
func (s ReportStatus) Closed() bool {
	return s == ReportStatusResolved || s == ReportStatusDismissed
}

// ReportPriority orders moderation work.
type ReportPriority string

const (
	ReportPriorityLow      ReportPriority = "LOW"
	ReportPriorityMedium   ReportPriority = "MEDIUM"
	ReportPriorityHigh     ReportPriority = "HIGH"
	ReportPriorityCritical ReportPriority = "CRITICAL"
)

// ContentType names the kind of content a report targets.
type ContentType string

const (
	ContentTypeProduct       ContentType = "PRODUCT"
	ContentTypeUser          ContentType = "USER"
	ContentTypeMessage       ContentType = "MESSAGE"
	ContentTypeAdvertisement ContentType = "ADVERTISEMENT"
)

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeProduct, ContentTypeUser, ContentTypeMessage, ContentTypeAdvertisement:
		return true
	}
	return false
}

// ReportReason is the reporter's stated reason.
type ReportReason string

const (
	ReasonSpam                 ReportReason = "SPAM"
	ReasonHarassment           ReportReason = "HARASSMENT"
	ReasonFraud                ReportReason = "FRAUD"
	ReasonHateSpeech           ReportReason = "HATE_SPEECH"
	ReasonAdultContent         ReportReason = "ADULT_CONTENT"
	ReasonIllegalActivity      ReportReason = "ILLEGAL_ACTIVITY"
	ReasonInappropriateContent ReportReason = "INAPPROPRIATE_CONTENT"
	ReasonMisleading           ReportReason = "MISLEADING"
	ReasonCopyright            ReportReason = "COPYRIGHT"
	ReasonOther                ReportReason = "OTHER"
)

var knownReasons = map[ReportReason]bool{
	ReasonSpam:                 false,
	ReasonHarassment:           true,
	ReasonFraud:                true,
	ReasonHateSpeech:           true,
	ReasonAdultContent:         true,
	ReasonIllegalActivity:      true,
	ReasonInappropriateContent: true,
	ReasonMisleading:           false,
	ReasonCopyright:            false,
	ReasonOther:                false,
}

// Valid reports whether r is a known reason.
func (r ReportReason) Valid() bool {
	_, ok := knownReasons[r]
	return ok
}

// InitialPriority derives a new report's priority from its reason.
func InitialPriority(reason ReportReason) ReportPriority {
	if knownReasons[reason] {
		return ReportPriorityHigh
	}
	return ReportPriorityMedium
}

// ContentReport is a user's report against a piece of content.
type ContentReport struct {
	ID           string
	ContentType  ContentType
	ContentID    string
	ReportedByID string
	Reason       ReportReason
	Description  string
	Priority     ReportPriority
	Status       ReportStatus
	ReviewedByID *string
	ReviewedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ModerationActionType records what a moderator did with a report.
type ModerationActionType string

const (
	ActionContentRemoved ModerationActionType = "CONTENT_REMOVED"
	ActionNoAction       ModerationActionType = "NO_ACTION"
	ActionWarning        ModerationActionType = "WARNING"
	ActionUserSuspended  ModerationActionType = "USER_SUSPENDED"
)

// ModerationAction is an insert-only audit entry for a report disposition.
type ModerationAction struct {
	ID          string
	ReportID    string
	ModeratorID string
	ActionType  ModerationActionType
	TargetType  ContentType
	TargetID    string
	Notes       string
	CreatedAt   time.Time
}
