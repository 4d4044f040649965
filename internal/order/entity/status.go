package entity

// EnquiryStatus is the lifecycle of a client lead.
type EnquiryStatus string

const (
	EnquiryStatusNew       EnquiryStatus = "new"
	EnquiryStatusReviewing EnquiryStatus = "reviewing"
	EnquiryStatusQuoted    EnquiryStatus = "quoted"
	EnquiryStatusWon       EnquiryStatus = "won"
	EnquiryStatusLost      EnquiryStatus = "lost"
)

var enquiryTransitions = map[EnquiryStatus][]EnquiryStatus{
	EnquiryStatusNew:       {EnquiryStatusReviewing, EnquiryStatusQuoted, EnquiryStatusLost},
	EnquiryStatusReviewing: {EnquiryStatusQuoted, EnquiryStatusLost},
	EnquiryStatusQuoted:    {EnquiryStatusWon, EnquiryStatusLost},
}

// CanTransitionTo reports whether the enquiry may move to next.
func (s EnquiryStatus) CanTransitionTo(next EnquiryStatus) bool {
	return contains(enquiryTransitions[s], next)
}

// QuoteStatus is the client-facing quote status.
type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "draft"
	QuoteStatusSent      QuoteStatus = "sent"
	QuoteStatusApproved  QuoteStatus = "approved"
	QuoteStatusRejected  QuoteStatus = "rejected"
	QuoteStatusExpired   QuoteStatus = "expired"
	QuoteStatusConverted QuoteStatus = "converted"
)

// converted is absent: only the conversion pipeline writes it.
var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusDraft:    {QuoteStatusSent, QuoteStatusApproved, QuoteStatusRejected, QuoteStatusExpired},
	QuoteStatusSent:     {QuoteStatusApproved, QuoteStatusRejected, QuoteStatusExpired},
	QuoteStatusApproved: {QuoteStatusExpired},
}

func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusApproved,
		QuoteStatusRejected, QuoteStatusExpired, QuoteStatusConverted:
		return true
	}
	return false
}

func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	return contains(quoteTransitions[s], next)
}

// Terminal statuses are read-only.
func (s QuoteStatus) Terminal() bool {
	return s == QuoteStatusConverted || s == QuoteStatusRejected || s == QuoteStatusExpired
}

// QuoteApprovalStatus is the internal pre-approval gate, independent of QuoteStatus.
type QuoteApprovalStatus string

const (
	QuoteApprovalNotRequested QuoteApprovalStatus = "not_requested"
	QuoteApprovalPending      QuoteApprovalStatus = "pending"
	QuoteApprovalApproved     QuoteApprovalStatus = "approved"
	QuoteApprovalRejected     QuoteApprovalStatus = "rejected"
)

var quoteApprovalTransitions = map[QuoteApprovalStatus][]QuoteApprovalStatus{
	QuoteApprovalNotRequested: {QuoteApprovalPending},
	QuoteApprovalPending:      {QuoteApprovalApproved, QuoteApprovalRejected},
	QuoteApprovalRejected:     {QuoteApprovalPending},
}

func (s QuoteApprovalStatus) CanTransitionTo(next QuoteApprovalStatus) bool {
	return contains(quoteApprovalTransitions[s], next)
}

// ProjectStatus is the project-level status, advanced by roll-up.
type ProjectStatus string

const (
	ProjectStatusAwaitingDeposit ProjectStatus = "awaiting_deposit"
	ProjectStatusDesignPending   ProjectStatus = "design_pending"
	ProjectStatusInDesign        ProjectStatus = "in_design"
	ProjectStatusDesignApproved  ProjectStatus = "design_approved"
	ProjectStatusInProduction    ProjectStatus = "in_production"
	ProjectStatusInInstallation  ProjectStatus = "in_installation"
	ProjectStatusCompleted       ProjectStatus = "completed"
	ProjectStatusOnHold          ProjectStatus = "on_hold"
	ProjectStatusCancelled       ProjectStatus = "cancelled"
)

// projectPhaseOrder ranks the statuses the roll-up is allowed to move between.
var projectPhaseOrder = map[ProjectStatus]int{
	ProjectStatusDesignPending:  1,
	ProjectStatusInDesign:       2,
	ProjectStatusDesignApproved: 3,
	ProjectStatusInProduction:   4,
	ProjectStatusInInstallation: 5,
	ProjectStatusCompleted:      6,
}

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusAwaitingDeposit, ProjectStatusOnHold, ProjectStatusCancelled:
		return true
	}
	_, ok := projectPhaseOrder[s]
	return ok
}

// Active means items of the project may move.
func (s ProjectStatus) Active() bool {
	_, ok := projectPhaseOrder[s]
	return ok && s != ProjectStatusCompleted
}

// Rank returns the phase rank, 0 for statuses outside the roll-up order.
func (s ProjectStatus) Rank() int {
	return projectPhaseOrder[s]
}

// ProjectStatusesBelow lists the roll-up statuses ranked below s.
func ProjectStatusesBelow(s ProjectStatus) []ProjectStatus {
	path := []ProjectStatus{
		ProjectStatusDesignPending,
		ProjectStatusInDesign,
		ProjectStatusDesignApproved,
		ProjectStatusInProduction,
		ProjectStatusInInstallation,
	}
	out := make([]ProjectStatus, 0, len(path))
	for _, p := range path {
		if p.Rank() < s.Rank() {
			out = append(out, p)
		}
	}
	return out
}

// IsDesignPhase reports whether the project has not yet reached production.
func (s ProjectStatus) IsDesignPhase() bool {
	return s == ProjectStatusDesignPending || s == ProjectStatusInDesign || s == ProjectStatusDesignApproved
}

// ItemStatus is the status of one produced unit.
type ItemStatus string

const (
	ItemStatusAwaitingDrawings       ItemStatus = "awaiting_drawings"
	ItemStatusInDesign               ItemStatus = "in_design"
	ItemStatusDrawingsComplete       ItemStatus = "drawings_complete"
	ItemStatusAwaitingClientApproval ItemStatus = "awaiting_client_approval"
	ItemStatusApproved               ItemStatus = "approved"
	ItemStatusProductionScheduling   ItemStatus = "production_scheduling"
	ItemStatusPreProduction          ItemStatus = "pre_production"
	ItemStatusInProduction           ItemStatus = "in_production"
	ItemStatusReadyForQC             ItemStatus = "ready_for_qc"
	ItemStatusReadyForDispatch       ItemStatus = "ready_for_dispatch"
	ItemStatusDispatched             ItemStatus = "dispatched"
	ItemStatusOnSite                 ItemStatus = "on_site"
	ItemStatusInstalled              ItemStatus = "installed"
	ItemStatusQSVerified             ItemStatus = "qs_verified"
	ItemStatusQCFailed               ItemStatus = "qc_failed"

	// ItemStatusPendingDesign is the legacy name of awaiting_drawings.
	ItemStatusPendingDesign ItemStatus = "pending_design"
)

// ItemForwardPath is the ordered forward vocabulary.
var ItemForwardPath = []ItemStatus{
	ItemStatusAwaitingDrawings,
	ItemStatusInDesign,
	ItemStatusDrawingsComplete,
	ItemStatusAwaitingClientApproval,
	ItemStatusApproved,
	ItemStatusProductionScheduling,
	ItemStatusPreProduction,
	ItemStatusInProduction,
	ItemStatusReadyForQC,
	ItemStatusReadyForDispatch,
	ItemStatusDispatched,
	ItemStatusOnSite,
	ItemStatusInstalled,
	ItemStatusQSVerified,
}

var itemRank = func() map[ItemStatus]int {
	m := make(map[ItemStatus]int, len(ItemForwardPath)+1)
	for i, s := range ItemForwardPath {
		m[s] = i
	}
	// a failed item is back in production for roll-up purposes
	m[ItemStatusQCFailed] = m[ItemStatusInProduction]
	return m
}()

// itemAdvanceTable holds the transitions reachable through a plain advance.
// ready_for_dispatch, qs_verified and qc_failed are only reachable through QC actions.
var itemAdvanceTable = map[ItemStatus]ItemStatus{
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

// qcGated maps the QC-only targets to the status they must be entered from.
var qcGated = map[ItemStatus]ItemStatus{
	ItemStatusReadyForDispatch: ItemStatusReadyForQC,
	ItemStatusQSVerified:       ItemStatusInstalled,
	ItemStatusQCFailed:         ItemStatusReadyForQC,
}

// NormalizeItemStatus maps legacy names onto the current vocabulary.
func NormalizeItemStatus(s ItemStatus) ItemStatus {
	if s == ItemStatusPendingDesign {
		return ItemStatusAwaitingDrawings
	}
	return s
}

func (s ItemStatus) Valid() bool {
	_, ok := itemRank[NormalizeItemStatus(s)]
	return ok
}

// Rank is the position on the forward path; qc_failed ranks with in_production.
func (s ItemStatus) Rank() int {
	r, ok := itemRank[NormalizeItemStatus(s)]
	if !ok {
		return -1
	}
	return r
}

// Next returns the status a plain advance leads to.
func (s ItemStatus) Next() (ItemStatus, bool) {
	next, ok := itemAdvanceTable[NormalizeItemStatus(s)]
	return next, ok
}

// CanAdvanceTo reports whether Advance may move an item from s to next.
func (s ItemStatus) CanAdvanceTo(next ItemStatus) bool {
	want, ok := s.Next()
	return ok && want == NormalizeItemStatus(next)
}

// RequiresQC reports whether the status can only be entered through a QC action.
func (s ItemStatus) RequiresQC() bool {
	_, ok := qcGated[NormalizeItemStatus(s)]
	return ok
}

// IsPreRelease reports whether the item is still in the design phase.
func (s ItemStatus) IsPreRelease() bool {
	r := s.Rank()
	return r >= 0 && r < itemRank[ItemStatusPreProduction]
}

// PreReleaseItemStatuses lists every design-phase item status.
func PreReleaseItemStatuses() []ItemStatus {
	out := make([]ItemStatus, 0, 7)
	for _, s := range ItemForwardPath {
		if s.IsPreRelease() {
			out = append(out, s)
		}
	}
	return append(out, ItemStatusPendingDesign)
}

// DrawingStatus is the status of a shop-drawing requirement.
type DrawingStatus string

const (
	DrawingStatusQueued                DrawingStatus = "queued"
	DrawingStatusInProduction          DrawingStatus = "in_production"
	DrawingStatusWaitingClientApproval DrawingStatus = "waiting_client_approval"
	DrawingStatusApproved              DrawingStatus = "approved"
	DrawingStatusSentToProduction      DrawingStatus = "sent_to_production"
	DrawingStatusOnHold                DrawingStatus = "on_hold"
	DrawingStatusCancelled             DrawingStatus = "cancelled"
)

var drawingTransitions = map[DrawingStatus][]DrawingStatus{
	DrawingStatusQueued:                {DrawingStatusInProduction, DrawingStatusOnHold, DrawingStatusCancelled},
	DrawingStatusInProduction:          {DrawingStatusWaitingClientApproval, DrawingStatusOnHold, DrawingStatusCancelled},
	DrawingStatusWaitingClientApproval: {DrawingStatusApproved, DrawingStatusInProduction, DrawingStatusOnHold, DrawingStatusCancelled},
	DrawingStatusApproved:              {DrawingStatusSentToProduction, DrawingStatusInProduction, DrawingStatusOnHold, DrawingStatusCancelled},
	DrawingStatusOnHold:                {DrawingStatusQueued, DrawingStatusInProduction, DrawingStatusCancelled},
}

func (s DrawingStatus) Valid() bool {
	switch s {
	case DrawingStatusQueued, DrawingStatusInProduction, DrawingStatusWaitingClientApproval,
		DrawingStatusApproved, DrawingStatusSentToProduction, DrawingStatusOnHold, DrawingStatusCancelled:
		return true
	}
	return false
}

func (s DrawingStatus) CanTransitionTo(next DrawingStatus) bool {
	return contains(drawingTransitions[s], next)
}

// InvoiceStatus is the billing status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
	InvoiceStatusPaid  InvoiceStatus = "paid"
	InvoiceStatusVoid  InvoiceStatus = "void"
)

var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft: {InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusVoid},
	InvoiceStatusSent:  {InvoiceStatusPaid, InvoiceStatusVoid},
}

func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	return contains(invoiceTransitions[s], next)
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
