// README: State-machine, alias, and label tests (no database).
package order

import "testing"

// TestCanTransition verifies the fulfillment transition table.
func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		// happy-path forward transitions
		{StatusInQueue, StatusInKitchen, true},
		{StatusInKitchen, StatusWaitingPhoto, true},
		{StatusWaitingPhoto, StatusPendingApproval, true},
		{StatusPendingApproval, StatusReadyToDeliver, true},
		{StatusReadyToDeliver, StatusInDelivery, true},
		{StatusInDelivery, StatusWaitingFeedback, true},
		{StatusWaitingFeedback, StatusFinished, true},
		{StatusFinished, StatusArchived, true},
		// approval/revision loop
		{StatusPendingApproval, StatusNeedsRevision, true},
		{StatusNeedsRevision, StatusPendingApproval, true},
		// kitchen can pull a photographed cake back into production
		{StatusWaitingPhoto, StatusInKitchen, true},
		// cancel from every non-terminal state
		{StatusInQueue, StatusCancelled, true},
		{StatusInKitchen, StatusCancelled, true},
		{StatusWaitingPhoto, StatusCancelled, true},
		{StatusPendingApproval, StatusCancelled, true},
		{StatusNeedsRevision, StatusCancelled, true},
		{StatusReadyToDeliver, StatusCancelled, true},
		{StatusInDelivery, StatusCancelled, true},
		{StatusWaitingFeedback, StatusCancelled, true},
		// invalid: terminal states have no outgoing transitions
		{StatusArchived, StatusInQueue, false},
		{StatusCancelled, StatusInQueue, false},
		{StatusFinished, StatusCancelled, false},
		// invalid: skipping stages
		{StatusInQueue, StatusWaitingPhoto, false},
		{StatusInQueue, StatusReadyToDeliver, false},
		{StatusWaitingPhoto, StatusReadyToDeliver, false},
		{StatusNeedsRevision, StatusReadyToDeliver, false},
		{StatusReadyToDeliver, StatusWaitingFeedback, false},
	}
	for _, tc := range cases {
		got := CanTransition(tc.from, tc.to)
		if got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

// TestMatchesAliases pins the legacy alias table.
func TestMatchesAliases(t *testing.T) {
	cases := []struct {
		current Status
		target  string
		want    bool
	}{
		{StatusInQueue, "confirmed", true},
		{StatusReadyToDeliver, "ready", true},
		{StatusWaitingFeedback, "delivered", true},
		{StatusWaitingFeedback, "waiting-feedback", true},
		{StatusFinished, "finished", true},
		{StatusArchived, "archived", true},
		// aliases never match other statuses
		{StatusInKitchen, "confirmed", false},
		{StatusInDelivery, "ready", false},
		{StatusFinished, "delivered", false},
		// non-alias names compare exactly
		{StatusInKitchen, "in-kitchen", true},
		{StatusInKitchen, "in-delivery", false},
		{StatusPendingApproval, "pending-approval", true},
	}
	for _, tc := range cases {
		if got := Matches(tc.current, tc.target); got != tc.want {
			t.Errorf("Matches(%s, %q) = %v, want %v", tc.current, tc.target, got, tc.want)
		}
	}
}

// TestMatchesTotality: every canonical status against every alias key and
// every canonical name returns without surprises.
func TestMatchesTotality(t *testing.T) {
	targets := []string{
		"confirmed", "ready", "delivered", "finished", "waiting-feedback", "archived",
		"bogus", "",
	}
	for _, s := range AllStatuses() {
		targets = append(targets, string(s))
	}
	for _, s := range AllStatuses() {
		for _, target := range targets {
			_ = Matches(s, target)
			if Matches(s, string(s)) != true {
				t.Fatalf("Matches(%s, %s) must be true", s, s)
			}
		}
	}
}

func TestRevisionLabel(t *testing.T) {
	cases := []struct {
		status Status
		count  int
		want   string
	}{
		{StatusNeedsRevision, 1, "Revision 1 Needed"},
		{StatusNeedsRevision, 3, "Revision 3 Needed"},
		{StatusPendingApproval, 2, "Revision 2 Pending Approval"},
		{StatusPendingApproval, 0, "Pending Approval"},
		{StatusWaitingPhoto, 2, "Pending Approval"},
	}
	for _, tc := range cases {
		if got := RevisionLabel(tc.status, tc.count); got != tc.want {
			t.Errorf("RevisionLabel(%s, %d) = %q, want %q", tc.status, tc.count, got, tc.want)
		}
	}
}

func TestPreAssignable(t *testing.T) {
	want := map[Status]bool{
		StatusInQueue:         true,
		StatusInKitchen:       true,
		StatusWaitingPhoto:    true,
		StatusPendingApproval: true,
		StatusNeedsRevision:   true,
		StatusReadyToDeliver:  false,
		StatusInDelivery:      false,
		StatusWaitingFeedback: false,
		StatusFinished:        false,
		StatusArchived:        false,
		StatusCancelled:       false,
	}
	for _, s := range AllStatuses() {
		if got := PreAssignable(s); got != want[s] {
			t.Errorf("PreAssignable(%s) = %v, want %v", s, got, want[s])
		}
	}
}
