// README: Order aggregate, status vocabulary, legacy aliases, and transition rules.
package order

import (
	"fmt"
	"time"

	"cakeline/internal/types"
)

type Status string

const (
	StatusNone            Status = "none"
	StatusInQueue         Status = "in-queue"
	StatusInKitchen       Status = "in-kitchen"
	StatusWaitingPhoto    Status = "waiting-photo"
	StatusPendingApproval Status = "pending-approval"
	StatusNeedsRevision   Status = "needs-revision"
	StatusReadyToDeliver  Status = "ready-to-deliver"
	StatusInDelivery      Status = "in-delivery"
	StatusWaitingFeedback Status = "waiting-feedback"
	StatusFinished        Status = "finished"
	StatusArchived        Status = "archived"
	StatusCancelled       Status = "cancelled"
)

// AllStatuses lists every canonical status. Order matters for display.
func AllStatuses() []Status {
	return []Status{
		StatusInQueue, StatusInKitchen, StatusWaitingPhoto,
		StatusPendingApproval, StatusNeedsRevision, StatusReadyToDeliver,
		StatusInDelivery, StatusWaitingFeedback, StatusFinished,
		StatusArchived, StatusCancelled,
	}
}

// legacyAliases keeps old status names working after renames. Call sites
// written against the old vocabulary resolve through this table; any other
// name compares by exact equality.
var legacyAliases = map[string]Status{
	"confirmed":        StatusInQueue,
	"ready":            StatusReadyToDeliver,
	"delivered":        StatusWaitingFeedback,
	"finished":         StatusFinished,
	"waiting-feedback": StatusWaitingFeedback,
	"archived":         StatusArchived,
}

// Matches reports whether current satisfies target, where target may be a
// legacy status name. Pure and total over the canonical enum.
func Matches(current Status, target string) bool {
	if canonical, ok := legacyAliases[target]; ok {
		return current == canonical
	}
	return current == Status(target)
}

// TimeSlot identifies one of the three fixed delivery windows.
type TimeSlot string

const (
	Slot1 TimeSlot = "slot1" // 10:00-13:00
	Slot2 TimeSlot = "slot2" // 13:00-16:00
	Slot3 TimeSlot = "slot3" // 16:00-20:00
)

// DeliveryAssignment is the single active driver assignment on an order.
// Assigning a new driver overwrites it; the order log keeps the audit trail.
type DeliveryAssignment struct {
	DriverType  string
	Preliminary bool
	AssignedAt  time.Time
	VehicleInfo string
}

type Order struct {
	ID              types.ID
	CustomerName    string
	CakeDescription string
	Status          Status
	StatusVersion   int
	KitchenStatus   *KitchenStatus
	DeliveryDate    time.Time
	DeliverySlot    *TimeSlot
	RevisionCount   int
	FinishedPhotos  []string
	Assignment      *DeliveryAssignment
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LogEntry is one append-only audit event on an order.
type LogEntry struct {
	ID             types.ID
	OrderID        types.ID
	Type           string
	PreviousStatus Status
	NewStatus      Status
	Note           string
	User           string
	CreatedAt      time.Time
}

const (
	LogStatusChange  = "status-change"
	LogKitchenChange = "kitchen-status-change"
	LogAssignment    = "assignment"
)

// Revision is one entry of the append-only photo-revision history.
type Revision struct {
	ID        int64
	OrderID   types.ID
	Seq       int
	Notes     string
	Photos    []string
	CreatedAt time.Time
}

// AllowedTransitions represents the fulfillment state flow as code.
// Cancel is reachable from every non-terminal state; finished only archives.
var AllowedTransitions = map[Status][]Status{
	StatusInQueue:         {StatusInKitchen, StatusCancelled},
	StatusInKitchen:       {StatusWaitingPhoto, StatusCancelled},
	StatusWaitingPhoto:    {StatusPendingApproval, StatusInKitchen, StatusCancelled},
	StatusPendingApproval: {StatusReadyToDeliver, StatusNeedsRevision, StatusCancelled},
	StatusNeedsRevision:   {StatusPendingApproval, StatusCancelled},
	StatusReadyToDeliver:  {StatusInDelivery, StatusCancelled},
	StatusInDelivery:      {StatusWaitingFeedback, StatusCancelled},
	StatusWaitingFeedback: {StatusFinished, StatusCancelled},
	StatusFinished:        {StatusArchived},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further fulfillment work happens on the order.
func IsTerminal(s Status) bool {
	return s == StatusWaitingFeedback || s == StatusFinished ||
		s == StatusArchived || s == StatusCancelled
}

// PreAssignable reports whether a driver may be quick-assigned while the
// order is not yet delivery-eligible (the assignment stays preliminary).
func PreAssignable(s Status) bool {
	switch s {
	case StatusInQueue, StatusInKitchen, StatusWaitingPhoto,
		StatusPendingApproval, StatusNeedsRevision:
		return true
	}
	return false
}

// RevisionLabel renders the approval-queue badge text for an order.
func RevisionLabel(s Status, revisionCount int) string {
	switch {
	case s == StatusNeedsRevision:
		return fmt.Sprintf("Revision %d Needed", revisionCount)
	case s == StatusPendingApproval && revisionCount > 0:
		return fmt.Sprintf("Revision %d Pending Approval", revisionCount)
	default:
		return "Pending Approval"
	}
}
