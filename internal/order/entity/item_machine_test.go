package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allItemStatuses() []ItemStatus {
	return append(append([]ItemStatus{}, ItemForwardPath...), ItemStatusQCFailed)
}

func TestPlanAdvanceOnlyImmediateSuccessor(t *testing.T) {
	legal := map[ItemStatus]ItemStatus{
		ItemStatusAwaitingDrawings:       ItemStatusInDesign,
		ItemStatusInDesign:               ItemStatusDrawingsComplete,
		ItemStatusDrawingsComplete:       ItemStatusAwaitingClientApproval,
		ItemStatusAwaitingClientApproval: ItemStatusApproved,
		ItemStatusApproved:               ItemStatusProductionScheduling,
		ItemStatusProductionScheduling:   ItemStatusPreProduction,
		ItemStatusPreProduction:          ItemStatusInProduction,
		ItemStatusInProduction:           ItemStatusReadyForQC,
		ItemStatusReadyForDispatch:       ItemStatusDispatched,
		ItemStatusDispatched:             ItemStatusOnSite,
		ItemStatusOnSite:                 ItemStatusInstalled,
		ItemStatusQCFailed:               ItemStatusInProduction,
	}
	now := time.Now()

	for _, from := range allItemStatuses() {
		for _, to := range allItemStatuses() {
			item := &ProjectItem{ID: "i", Status: from}
			change, err := PlanAdvance(item, to, "u1", now)
			if legal[from] == to {
				require.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, change.To)
				assert.Equal(t, from, change.From)
				continue
			}
			require.Error(t, err, "%s -> %s", from, to)
			assert.True(t, errors.Is(err, ErrIllegalTransition), "%s -> %s: %v", from, to, err)
			assert.Contains(t, err.Error(), string(from))
			assert.Contains(t, err.Error(), string(to))
		}
	}
}

func TestPlanAdvanceStamps(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	change, err := PlanAdvance(&ProjectItem{Status: ItemStatusPreProduction}, ItemStatusInProduction, "u1", now)
	require.NoError(t, err)
	assert.Equal(t, now, change.Updates["production_started_at"])

	change, err = PlanAdvance(&ProjectItem{Status: ItemStatusInProduction}, ItemStatusReadyForQC, "u1", now)
	require.NoError(t, err)
	assert.Equal(t, now, change.Updates["production_completed_at"])

	change, err = PlanAdvance(&ProjectItem{Status: ItemStatusOnSite}, ItemStatusInstalled, "fitter-7", now)
	require.NoError(t, err)
	assert.Equal(t, now, change.Updates["installed_at"])
	assert.Equal(t, "fitter-7", change.Updates["installed_by"])
}

func TestPlanAdvanceLegacyPendingDesign(t *testing.T) {
	change, err := PlanAdvance(&ProjectItem{Status: ItemStatusPendingDesign}, ItemStatusInDesign, "u1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, ItemStatusAwaitingDrawings, change.From)
}

func TestPlanAdvanceUnknownStatus(t *testing.T) {
	_, err := PlanAdvance(&ProjectItem{Status: ItemStatusOnSite}, "teleported", "u1", time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestPlanAdvanceSkippingQCFails(t *testing.T) {
	_, err := PlanAdvance(&ProjectItem{Status: ItemStatusInstalled}, ItemStatusQSVerified, "u1", time.Now())
	require.Error(t, err)
	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "installed", te.From)
	assert.Equal(t, "qs_verified", te.To)

	_, err = PlanAdvance(&ProjectItem{Status: ItemStatusReadyForQC}, ItemStatusReadyForDispatch, "u1", time.Now())
	assert.True(t, errors.Is(err, ErrIllegalTransition))
}

func TestPlanPassQC(t *testing.T) {
	now := time.Now()

	change, err := PlanPassQC(&ProjectItem{Status: ItemStatusReadyForQC}, QCTypeWorkshop, "", now)
	require.NoError(t, err)
	assert.Equal(t, ItemStatusReadyForDispatch, change.To)
	assert.Equal(t, true, change.Updates["workshop_qc_passed"])

	change, err = PlanPassQC(&ProjectItem{Status: ItemStatusInstalled}, QCTypeSite, "all good", now)
	require.NoError(t, err)
	assert.Equal(t, ItemStatusQSVerified, change.To)
	assert.Equal(t, true, change.Updates["site_qc_passed"])
	assert.Equal(t, now, change.Updates["site_qc_at"])

	_, err = PlanPassQC(&ProjectItem{Status: ItemStatusInProduction}, QCTypeWorkshop, "", now)
	assert.True(t, errors.Is(err, ErrIllegalTransition))

	_, err = PlanPassQC(&ProjectItem{Status: ItemStatusReadyForQC}, QCTypeSite, "", now)
	assert.True(t, errors.Is(err, ErrIllegalTransition))

	_, err = PlanPassQC(&ProjectItem{Status: ItemStatusReadyForQC}, "visual", "", now)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestPlanFailQC(t *testing.T) {
	now := time.Now()
	reason := "Door gap 4mm on left side; veneer chipped near hinge #2"

	change, err := PlanFailQC(&ProjectItem{Status: ItemStatusReadyForQC}, QCTypeWorkshop, reason, now)
	require.NoError(t, err)
	assert.Equal(t, ItemStatusQCFailed, change.To)
	assert.Equal(t, reason, change.Updates["workshop_qc_notes"])
	assert.Equal(t, false, change.Updates["workshop_qc_passed"])

	change, err = PlanFailQC(&ProjectItem{Status: ItemStatusInstalled}, QCTypeSite, reason, now)
	require.NoError(t, err)
	assert.Equal(t, ItemStatusInstalled, change.To)
	assert.Equal(t, reason, change.Updates["site_qc_notes"])

	_, err = PlanFailQC(&ProjectItem{Status: ItemStatusReadyForQC}, QCTypeWorkshop, "", now)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = PlanFailQC(&ProjectItem{Status: ItemStatusOnSite}, QCTypeSite, reason, now)
	assert.True(t, errors.Is(err, ErrIllegalTransition))
}
