package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDeriveProjectStatus(t *testing.T) {
	tests := []struct {
		name    string
		current ProjectStatus
		items   []ItemStatus
		want    ProjectStatus
	}{
		{"no items", ProjectStatusDesignPending, nil, ProjectStatusDesignPending},
		{"untouched", ProjectStatusDesignPending, []ItemStatus{ItemStatusAwaitingDrawings, ItemStatusAwaitingDrawings}, ProjectStatusDesignPending},
		{"design started", ProjectStatusDesignPending, []ItemStatus{ItemStatusAwaitingDrawings, ItemStatusInDesign}, ProjectStatusInDesign},
		{"all approved", ProjectStatusInDesign, []ItemStatus{ItemStatusApproved, ItemStatusProductionScheduling}, ProjectStatusDesignApproved},
		{"all released", ProjectStatusInDesign, []ItemStatus{ItemStatusPreProduction, ItemStatusInProduction}, ProjectStatusInProduction},
		{"qc failure stays in production", ProjectStatusInProduction, []ItemStatus{ItemStatusQCFailed, ItemStatusDispatched}, ProjectStatusInProduction},
		{"all on the way to site", ProjectStatusInProduction, []ItemStatus{ItemStatusDispatched, ItemStatusInstalled}, ProjectStatusInInstallation},
		{"all verified", ProjectStatusInInstallation, []ItemStatus{ItemStatusQSVerified, ItemStatusQSVerified}, ProjectStatusCompleted},
		{"never backwards", ProjectStatusInProduction, []ItemStatus{ItemStatusAwaitingDrawings}, ProjectStatusInProduction},
		{"on hold untouched", ProjectStatusOnHold, []ItemStatus{ItemStatusQSVerified}, ProjectStatusOnHold},
		{"awaiting deposit untouched", ProjectStatusAwaitingDeposit, []ItemStatus{ItemStatusInDesign}, ProjectStatusAwaitingDeposit},
		{"cancelled untouched", ProjectStatusCancelled, []ItemStatus{ItemStatusQSVerified}, ProjectStatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveProjectStatus(tt.current, tt.items))
		})
	}
}

func TestDrawingTitle(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "Oak é "
	}
	title := DrawingTitle(ProjectItem{ItemCode: "GF-KIT-01", Description: long})
	assert.Len(t, []rune(title), DrawingTitleMaxLen)

	assert.Equal(t, "GF-KIT-01", DrawingTitle(ProjectItem{ItemCode: "GF-KIT-01"}))
	assert.Equal(t, "Base unit", DrawingTitle(ProjectItem{ItemCode: "x", Description: "Base unit"}))
}

func TestDepositAmount(t *testing.T) {
	got := DepositAmount(decimal.NewFromInt(2100), decimal.RequireFromString("0.30"))
	assert.True(t, got.Equal(decimal.NewFromInt(630)), got.String())

	got = DepositAmount(decimal.RequireFromString("1000.05"), decimal.RequireFromString("0.30"))
	assert.Equal(t, "300.02", got.StringFixed(2))
}
