// README: Order service; fulfillment state transitions, approval cycle, and assignment.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cakeline/internal/types"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrInvalidState = errors.New("invalid state transition")
	ErrNotFound     = errors.New("order not found")
	ErrConflict     = errors.New("order state conflict")
)

// SystemActor is recorded on log entries when no acting user is known.
const SystemActor = "System"

// Gallery is the photo-gallery collaborator. Adding a photo on approval is
// best effort; a failure never rolls back the approval.
type Gallery interface {
	AddPhoto(ctx context.Context, p GalleryPhoto) error
}

type GalleryPhoto struct {
	ImageURL     string
	Tags         []string
	OrderID      types.ID
	CustomerName string
}

// Notifier publishes status-change events to interested consumers.
// Publish failures degrade to warnings on the result, never to errors.
type Notifier interface {
	PublishStatusChange(ctx context.Context, e StatusChangedEvent) error
}

type StatusChangedEvent struct {
	OrderID        types.ID  `json:"order_id"`
	PreviousStatus Status    `json:"previous_status"`
	NewStatus      Status    `json:"new_status"`
	Actor          string    `json:"actor"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type Service struct {
	store   *Store
	gallery Gallery
	notify  Notifier
}

func NewService(store *Store, gallery Gallery, notify Notifier) *Service {
	return &Service{store: store, gallery: gallery, notify: notify}
}

type CreateCommand struct {
	CustomerName    string
	CakeDescription string
	DeliveryDate    time.Time
	DeliverySlot    *TimeSlot
	Actor           string
}

type SubmitPhotosCommand struct {
	OrderID types.ID
	Photos  []string
	Actor   string
}

type ApproveCommand struct {
	OrderID      types.ID
	Actor        string
	AddToGallery bool
	GalleryTags  []string
}

// ApproveResult reports what the approval actually did. Warning carries
// side-effect failures (gallery, event publication) that did not block the
// transition.
type ApproveResult struct {
	AlreadyReady bool
	Promoted     bool
	Warning      string
}

type RequestRevisionCommand struct {
	OrderID types.ID
	Notes   string
	Actor   string
}

type SetKitchenStatusCommand struct {
	OrderID types.ID
	Kitchen KitchenStatus
	Actor   string
}

type AssignDriverCommand struct {
	OrderID     types.ID
	DriverType  string
	VehicleInfo string
	Actor       string
}

type TransitionCommand struct {
	OrderID types.ID
	Actor   string
	Note    string
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (types.ID, error) {
	if cmd.CustomerName == "" {
		return "", fmt.Errorf("%w: customer name required", ErrValidation)
	}
	if cmd.DeliveryDate.IsZero() {
		return "", fmt.Errorf("%w: delivery date required", ErrValidation)
	}
	if cmd.DeliverySlot != nil {
		switch *cmd.DeliverySlot {
		case Slot1, Slot2, Slot3:
		default:
			return "", fmt.Errorf("%w: unknown delivery slot %q", ErrValidation, *cmd.DeliverySlot)
		}
	}

	id := types.ID(uuid.NewString())
	now := time.Now()
	o := &Order{
		ID:              id,
		CustomerName:    cmd.CustomerName,
		CakeDescription: cmd.CakeDescription,
		Status:          StatusInQueue,
		StatusVersion:   0,
		DeliveryDate:    types.Day(cmd.DeliveryDate),
		DeliverySlot:    cmd.DeliverySlot,
		CreatedAt:       now,
	}
	log := &LogEntry{
		OrderID:        id,
		Type:           LogStatusChange,
		PreviousStatus: StatusNone,
		NewStatus:      StatusInQueue,
		Note:           "order created",
		User:           actorOr(cmd.Actor),
		CreatedAt:      now,
	}
	if err := s.store.Create(ctx, o, log); err != nil {
		return "", err
	}
	return id, nil
}

// SetKitchenStatus applies a kitchen-board stage pick. It sets the explicit
// sub-status and, when the stage implies a different coarse status, performs
// that transition too, so the two can never disagree.
func (s *Service) SetKitchenStatus(ctx context.Context, cmd SetKitchenStatusCommand) error {
	switch cmd.Kitchen {
	case KitchenWaitingBaker, KitchenWaitingCrumbcoat, KitchenWaitingCover,
		KitchenDecorating, KitchenDoneWaitingApproval:
	default:
		return fmt.Errorf("%w: unknown kitchen status %q", ErrValidation, cmd.Kitchen)
	}

	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return err
	}
	target := cmd.Kitchen.OrderStatus()
	actor := actorOr(cmd.Actor)
	now := time.Now()

	if o.Status == target {
		log := &LogEntry{
			OrderID:        o.ID,
			Type:           LogKitchenChange,
			PreviousStatus: o.Status,
			NewStatus:      o.Status,
			Note:           string(cmd.Kitchen),
			User:           actor,
			CreatedAt:      now,
		}
		ok, err := s.store.SetKitchenStatus(ctx, o.ID, o.Status, o.StatusVersion, cmd.Kitchen, log)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConflict
		}
		return nil
	}

	if !CanTransition(o.Status, target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, o.Status, target)
	}
	ks := cmd.Kitchen
	log := &LogEntry{
		OrderID:        o.ID,
		Type:           LogKitchenChange,
		PreviousStatus: o.Status,
		NewStatus:      target,
		Note:           string(cmd.Kitchen),
		User:           actor,
		CreatedAt:      now,
	}
	ok, err := s.store.UpdateStatus(ctx, o.ID, o.Status, target, o.StatusVersion,
		transitionEffect{setKitchen: &ks}, log)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	s.publish(ctx, o.ID, o.Status, target, actor, now)
	return nil
}

// SubmitPhotos moves waiting-photo (or needs-revision, on resubmit) to
// pending-approval. At least one photo is required; the explicit kitchen
// sub-status is cleared because the order leaves production.
func (s *Service) SubmitPhotos(ctx context.Context, cmd SubmitPhotosCommand) error {
	if len(cmd.Photos) == 0 {
		return fmt.Errorf("%w: at least one photo required", ErrValidation)
	}
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return err
	}
	if o.Status != StatusWaitingPhoto && o.Status != StatusNeedsRevision {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, o.Status, StatusPendingApproval)
	}

	actor := actorOr(cmd.Actor)
	now := time.Now()
	log := &LogEntry{
		OrderID:        o.ID,
		Type:           LogStatusChange,
		PreviousStatus: o.Status,
		NewStatus:      StatusPendingApproval,
		Note:           fmt.Sprintf("%d photo(s) submitted", len(cmd.Photos)),
		User:           actor,
		CreatedAt:      now,
	}
	ok, err := s.store.UpdateStatus(ctx, o.ID, o.Status, StatusPendingApproval, o.StatusVersion,
		transitionEffect{setPhotos: cmd.Photos, clearedKitchen: true}, log)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	s.publish(ctx, o.ID, o.Status, StatusPendingApproval, actor, now)
	return nil
}

// Approve confirms the finished-cake photos and makes the order
// delivery-eligible. Approving an order that is already ready-to-deliver is
// a no-op and appends no duplicate log entry. A preliminary driver
// assignment is promoted to confirmed atomically with the status change.
func (s *Service) Approve(ctx context.Context, cmd ApproveCommand) (ApproveResult, error) {
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return ApproveResult{}, err
	}
	if o.Status == StatusReadyToDeliver {
		return ApproveResult{AlreadyReady: true}, nil
	}
	if o.Status != StatusPendingApproval {
		return ApproveResult{}, fmt.Errorf("%w: %s -> %s", ErrInvalidState, o.Status, StatusReadyToDeliver)
	}

	actor := actorOr(cmd.Actor)
	now := time.Now()
	log := &LogEntry{
		OrderID:        o.ID,
		Type:           LogStatusChange,
		PreviousStatus: StatusPendingApproval,
		NewStatus:      StatusReadyToDeliver,
		Note:           "photos approved",
		User:           actor,
		CreatedAt:      now,
	}
	ok, err := s.store.UpdateStatus(ctx, o.ID, StatusPendingApproval, StatusReadyToDeliver,
		o.StatusVersion, transitionEffect{}, log)
	if err != nil {
		return ApproveResult{}, err
	}
	if !ok {
		return ApproveResult{}, ErrConflict
	}

	res := ApproveResult{
		Promoted: o.Assignment != nil && o.Assignment.Preliminary,
	}
	if cmd.AddToGallery && s.gallery != nil {
		for _, url := range o.FinishedPhotos {
			if err := s.gallery.AddPhoto(ctx, GalleryPhoto{
				ImageURL:     url,
				Tags:         cmd.GalleryTags,
				OrderID:      o.ID,
				CustomerName: o.CustomerName,
			}); err != nil {
				res.Warning = fmt.Sprintf("gallery add failed: %v", err)
				break
			}
		}
	}
	if warn := s.publish(ctx, o.ID, StatusPendingApproval, StatusReadyToDeliver, actor, now); warn != "" && res.Warning == "" {
		res.Warning = warn
	}
	return res, nil
}

// RequestRevision sends the order back to the kitchen with reviewer notes.
// Empty notes are rejected: silent revisions would break the audit trail.
func (s *Service) RequestRevision(ctx context.Context, cmd RequestRevisionCommand) error {
	if cmd.Notes == "" {
		return fmt.Errorf("%w: revision notes required", ErrValidation)
	}
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return err
	}
	if o.Status != StatusPendingApproval {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, o.Status, StatusNeedsRevision)
	}

	actor := actorOr(cmd.Actor)
	now := time.Now()
	rev := &Revision{
		OrderID:   o.ID,
		Seq:       o.RevisionCount + 1,
		Notes:     cmd.Notes,
		Photos:    o.FinishedPhotos,
		CreatedAt: now,
	}
	log := &LogEntry{
		OrderID:        o.ID,
		Type:           LogStatusChange,
		PreviousStatus: StatusPendingApproval,
		NewStatus:      StatusNeedsRevision,
		Note:           cmd.Notes,
		User:           actor,
		CreatedAt:      now,
	}
	ok, err := s.store.UpdateStatus(ctx, o.ID, StatusPendingApproval, StatusNeedsRevision,
		o.StatusVersion, transitionEffect{bumpRevision: true, revision: rev}, log)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	s.publish(ctx, o.ID, StatusPendingApproval, StatusNeedsRevision, actor, now)
	return nil
}

// AssignDriver quick-assigns a driver to an order. Orders not yet
// delivery-eligible may still be assigned: the assignment is marked
// preliminary and promoted automatically when the order becomes ready.
func (s *Service) AssignDriver(ctx context.Context, cmd AssignDriverCommand) error {
	if cmd.DriverType == "" {
		return fmt.Errorf("%w: driver type required", ErrValidation)
	}
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return err
	}

	var preliminary bool
	switch {
	case o.Status == StatusReadyToDeliver || o.Status == StatusInDelivery:
		preliminary = false
	case PreAssignable(o.Status):
		preliminary = true
	default:
		return fmt.Errorf("%w: cannot assign driver while %s", ErrInvalidState, o.Status)
	}

	actor := actorOr(cmd.Actor)
	now := time.Now()
	a := DeliveryAssignment{
		DriverType:  cmd.DriverType,
		Preliminary: preliminary,
		AssignedAt:  now,
		VehicleInfo: cmd.VehicleInfo,
	}
	note := fmt.Sprintf("driver %s assigned", cmd.DriverType)
	if preliminary {
		note += " (preliminary)"
	}
	log := &LogEntry{
		OrderID:        o.ID,
		Type:           LogAssignment,
		PreviousStatus: o.Status,
		NewStatus:      o.Status,
		Note:           note,
		User:           actor,
		CreatedAt:      now,
	}
	ok, err := s.store.SetAssignment(ctx, o.ID, o.StatusVersion, a, log)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

// StartDelivery moves a ready order out for delivery.
func (s *Service) StartDelivery(ctx context.Context, cmd TransitionCommand) error {
	return s.simpleTransition(ctx, cmd, StatusInDelivery, "out for delivery")
}

// MarkDelivered records hand-off to the customer; the order waits for feedback.
func (s *Service) MarkDelivered(ctx context.Context, cmd TransitionCommand) error {
	return s.simpleTransition(ctx, cmd, StatusWaitingFeedback, "delivered to customer")
}

// Finish closes the feedback loop.
func (s *Service) Finish(ctx context.Context, cmd TransitionCommand) error {
	return s.simpleTransition(ctx, cmd, StatusFinished, "order finished")
}

// Archive hides a finished order from default views.
func (s *Service) Archive(ctx context.Context, cmd TransitionCommand) error {
	return s.simpleTransition(ctx, cmd, StatusArchived, "order archived")
}

// Cancel shunts a non-terminal order to cancelled.
func (s *Service) Cancel(ctx context.Context, cmd TransitionCommand) error {
	note := cmd.Note
	if note == "" {
		note = "order cancelled"
	}
	cmd.Note = note
	return s.simpleTransition(ctx, cmd, StatusCancelled, note)
}

func (s *Service) simpleTransition(ctx context.Context, cmd TransitionCommand, to Status, defaultNote string) error {
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return err
	}
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, o.Status, to)
	}
	note := cmd.Note
	if note == "" {
		note = defaultNote
	}
	actor := actorOr(cmd.Actor)
	now := time.Now()
	log := &LogEntry{
		OrderID:        o.ID,
		Type:           LogStatusChange,
		PreviousStatus: o.Status,
		NewStatus:      to,
		Note:           note,
		User:           actor,
		CreatedAt:      now,
	}
	eff := transitionEffect{}
	if to == StatusCancelled || to == StatusWaitingFeedback {
		eff.clearedKitchen = true
	}
	ok, err := s.store.UpdateStatus(ctx, o.ID, o.Status, to, o.StatusVersion, eff, log)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	s.publish(ctx, o.ID, o.Status, to, actor, now)
	return nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Order, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, statuses []Status, closedHidden bool) ([]*Order, error) {
	return s.store.List(ctx, statuses, closedHidden)
}

func (s *Service) Logs(ctx context.Context, id types.ID) ([]LogEntry, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListLogs(ctx, id)
}

// Revisions returns the revision history newest-first for display.
func (s *Service) Revisions(ctx context.Context, id types.ID) ([]Revision, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	revs, err := s.store.ListRevisions(ctx, id)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(revs)-1; i < j; i, j = i+1, j-1 {
		revs[i], revs[j] = revs[j], revs[i]
	}
	return revs, nil
}

func (s *Service) publish(ctx context.Context, id types.ID, from, to Status, actor string, at time.Time) string {
	if s.notify == nil {
		return ""
	}
	err := s.notify.PublishStatusChange(ctx, StatusChangedEvent{
		OrderID:        id,
		PreviousStatus: from,
		NewStatus:      to,
		Actor:          actor,
		OccurredAt:     at,
	})
	if err != nil {
		return fmt.Sprintf("event publish failed: %v", err)
	}
	return ""
}

func actorOr(actor string) string {
	if actor == "" {
		return SystemActor
	}
	return actor
}
