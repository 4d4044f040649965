package entity

// DeriveProjectStatus recomputes the project status from its items.
// Manual and gated statuses are left alone, and the result never moves
// a project backwards.
func DeriveProjectStatus(current ProjectStatus, items []ItemStatus) ProjectStatus {
	if !current.Active() || len(items) == 0 {
		return current
	}

	lowest := -1
	anyStarted := false
	for _, s := range items {
		r := s.Rank()
		if r < 0 {
			continue
		}
		if lowest < 0 || r < lowest {
			lowest = r
		}
		if r >= ItemStatusInDesign.Rank() {
			anyStarted = true
		}
	}
	if lowest < 0 {
		return current
	}

	derived := ProjectStatusDesignPending
	switch {
	case lowest >= ItemStatusQSVerified.Rank():
		derived = ProjectStatusCompleted
	case lowest >= ItemStatusDispatched.Rank():
		derived = ProjectStatusInInstallation
	case lowest >= ItemStatusPreProduction.Rank():
		derived = ProjectStatusInProduction
	case lowest >= ItemStatusApproved.Rank():
		derived = ProjectStatusDesignApproved
	case anyStarted:
		derived = ProjectStatusInDesign
	}

	if derived.Rank() > current.Rank() {
		return derived
	}
	return current
}
