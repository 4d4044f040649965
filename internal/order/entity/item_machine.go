package entity

import "time"

// QCType selects the inspection a QC action refers to.
type QCType string

const (
	QCTypeWorkshop QCType = "workshop"
	QCTypeSite     QCType = "site"
)

func (t QCType) Valid() bool {
	return t == QCTypeWorkshop || t == QCTypeSite
}

// ItemChange is a validated transition ready to be written.
// Updates holds the column values to set alongside status.
type ItemChange struct {
	Action  string
	From    ItemStatus
	To      ItemStatus
	Updates map[string]interface{}
	Comment string
}

// PlanAdvance validates a plain status advance and computes phase stamps.
func PlanAdvance(item *ProjectItem, requested ItemStatus, actorID string, now time.Time) (*ItemChange, error) {
	from := NormalizeItemStatus(item.Status)
	to := NormalizeItemStatus(requested)
	if !to.Valid() {
		return nil, InvalidInput("unknown item status %q", requested)
	}
	if to.RequiresQC() {
		return nil, NewTransitionError("item", from, to, "reachable only through a QC action")
	}
	if !from.CanAdvanceTo(to) {
		return nil, NewTransitionError("item", from, to, "")
	}

	updates := map[string]interface{}{
		"status":     to,
		"updated_at": now,
	}
	switch to {
	case ItemStatusInProduction:
		updates["production_started_at"] = now
	case ItemStatusReadyForQC:
		updates["production_completed_at"] = now
	case ItemStatusDispatched:
		updates["dispatched_at"] = now
	case ItemStatusOnSite:
		updates["delivered_at"] = now
	case ItemStatusInstalled:
		updates["installed_at"] = now
		updates["installed_by"] = actorID
	}
	return &ItemChange{Action: ItemActionAdvance, From: from, To: to, Updates: updates}, nil
}

// PlanPassQC validates a QC pass. Workshop QC releases the item for dispatch,
// site QC verifies an installed item.
func PlanPassQC(item *ProjectItem, qcType QCType, notes string, now time.Time) (*ItemChange, error) {
	from := NormalizeItemStatus(item.Status)
	updates := map[string]interface{}{"updated_at": now}

	var to ItemStatus
	switch qcType {
	case QCTypeWorkshop:
		to = ItemStatusReadyForDispatch
		updates["workshop_qc_passed"] = true
		updates["workshop_qc_at"] = now
		if notes != "" {
			updates["workshop_qc_notes"] = notes
		}
	case QCTypeSite:
		to = ItemStatusQSVerified
		updates["site_qc_passed"] = true
		updates["site_qc_at"] = now
		if notes != "" {
			updates["site_qc_notes"] = notes
		}
	default:
		return nil, InvalidInput("unknown qc type %q", qcType)
	}
	if qcGated[to] != from {
		return nil, NewTransitionError("item", from, to, string(qcType)+" QC requires status "+string(qcGated[to]))
	}
	updates["status"] = to
	return &ItemChange{Action: ItemActionPassQC, From: from, To: to, Updates: updates, Comment: notes}, nil
}

// PlanFailQC validates a QC failure. The reason is stored verbatim.
// A failed site QC keeps the item installed for rework and re-inspection.
func PlanFailQC(item *ProjectItem, qcType QCType, reason string, now time.Time) (*ItemChange, error) {
	if reason == "" {
		return nil, InvalidInput("a failure reason is required")
	}
	from := NormalizeItemStatus(item.Status)
	updates := map[string]interface{}{"updated_at": now}

	var to, required ItemStatus
	switch qcType {
	case QCTypeWorkshop:
		to, required = ItemStatusQCFailed, ItemStatusReadyForQC
		updates["workshop_qc_passed"] = false
		updates["workshop_qc_at"] = now
		updates["workshop_qc_notes"] = reason
	case QCTypeSite:
		to, required = ItemStatusInstalled, ItemStatusInstalled
		updates["site_qc_passed"] = false
		updates["site_qc_at"] = now
		updates["site_qc_notes"] = reason
	default:
		return nil, InvalidInput("unknown qc type %q", qcType)
	}
	if from != required {
		return nil, NewTransitionError("item", from, to, string(qcType)+" QC requires status "+string(required))
	}
	updates["status"] = to
	return &ItemChange{Action: ItemActionFailQC, From: from, To: to, Updates: updates, Comment: reason}, nil
}
