// README: Delivery trip aggregate; one driver, one day, a batch of orders.
package trip

import (
	"fmt"
	"time"

	"cakeline/internal/modules/order"
	"cakeline/internal/types"
)

type Status string

const (
	StatusPlanned   Status = "planned"
	StatusDeparted  Status = "departed"
	StatusCompleted Status = "completed"
)

type Trip struct {
	ID            types.ID
	DriverType    string
	TripDate      time.Time
	TripNumber    int
	Name          string
	DepartureTime *time.Time
	Status        Status
	OrderIDs      []types.ID
	CreatedAt     time.Time
}

// Open reports whether the trip still accepts membership changes.
func (t *Trip) Open() bool {
	return t.Status == StatusPlanned
}

// Name builds the human-readable trip name from the driver's display name
// and the per-driver-per-day sequence number.
func Name(driverDisplayName string, tripNumber int) string {
	return fmt.Sprintf("%s Trip #%d", driverDisplayName, tripNumber)
}

// StatusBreakdown counts the selected orders per status and reports whether
// any of them is not yet ready for delivery. Bulk trip creation surfaces
// this so the caller can warn the user; it never blocks creation.
func StatusBreakdown(orders []*order.Order) (map[order.Status]int, bool) {
	counts := make(map[order.Status]int, len(orders))
	hasNonReady := false
	for _, o := range orders {
		counts[o.Status]++
		if !order.Matches(o.Status, "ready") {
			hasNonReady = true
		}
	}
	return counts, hasNonReady
}
