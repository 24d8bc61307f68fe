// README: Kitchen sub-status derivation and the kitchen<->order status mapping.
package order

type KitchenStatus string

const (
	KitchenWaitingBaker        KitchenStatus = "waiting-baker"
	KitchenWaitingCrumbcoat    KitchenStatus = "waiting-crumbcoat"
	KitchenWaitingCover        KitchenStatus = "waiting-cover"
	KitchenDecorating          KitchenStatus = "decorating"
	KitchenDoneWaitingApproval KitchenStatus = "done-waiting-approval"

	// KitchenAll is a pseudo-value used by aggregate board views only.
	KitchenAll KitchenStatus = "all"
)

// AllKitchenStatuses lists the five production stages in pipeline order.
func AllKitchenStatuses() []KitchenStatus {
	return []KitchenStatus{
		KitchenWaitingBaker, KitchenWaitingCrumbcoat, KitchenWaitingCover,
		KitchenDecorating, KitchenDoneWaitingApproval,
	}
}

// DeriveKitchenStatus returns the production stage for an order. An explicit
// KitchenStatus wins; otherwise the stage is re-derived from the coarse
// status. The legacy in-kitchen status alone cannot distinguish the
// crumbcoat/cover/decorating substeps, so it maps to waiting-cover as a
// coarse default. Never fails: unrecognized statuses fall back to
// waiting-baker.
func DeriveKitchenStatus(o *Order) KitchenStatus {
	if o.KitchenStatus != nil {
		return *o.KitchenStatus
	}
	switch o.Status {
	case StatusInQueue:
		return KitchenWaitingBaker
	case StatusWaitingPhoto:
		return KitchenDoneWaitingApproval
	case StatusInKitchen:
		return KitchenWaitingCover
	default:
		return KitchenWaitingBaker
	}
}

// OrderStatus maps a kitchen sub-status back onto the coarse order status.
// The four in-production substates all live under in-kitchen;
// done-waiting-approval means the cake is photographed next.
func (k KitchenStatus) OrderStatus() Status {
	if k == KitchenDoneWaitingApproval {
		return StatusWaitingPhoto
	}
	return StatusInKitchen
}

func (k KitchenStatus) DisplayName() string {
	switch k {
	case KitchenWaitingBaker:
		return "Waiting Baker"
	case KitchenWaitingCrumbcoat:
		return "Waiting Crumbcoat"
	case KitchenWaitingCover:
		return "Waiting Cover"
	case KitchenDecorating:
		return "Decorating"
	case KitchenDoneWaitingApproval:
		return "Done / Waiting Approval"
	case KitchenAll:
		return "All Stages"
	default:
		return "Waiting Baker"
	}
}

func (k KitchenStatus) ColorTag() string {
	switch k {
	case KitchenWaitingBaker:
		return "gray"
	case KitchenWaitingCrumbcoat:
		return "orange"
	case KitchenWaitingCover:
		return "yellow"
	case KitchenDecorating:
		return "blue"
	case KitchenDoneWaitingApproval:
		return "green"
	case KitchenAll:
		return "neutral"
	default:
		return "gray"
	}
}
