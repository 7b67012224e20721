package project

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/settlement"
	"flowerstand/internal/pkg/errs"
)

const maxMaterialDescriptionLength = 1000

var (
	// ErrProjectIsNotConstructed is returned when a Project was not created through
	// NewProject or RestoreProject.
	ErrProjectIsNotConstructed = errors.New("Project must be created via NewProject or RestoreProject")
)

// Project is the aggregate root of a crowdfunded flower stand.
//
// Project follows these invariants:
//   - ProductionStatus is UNSET until fundraising has started
//   - ProductionStatus only ever moves to its immediate successor
//   - MaterialCost never decreases
//   - DeliveryDateTime is fixed once fundraising has started
//   - A CANCELLED project carries exactly one frozen CancellationEstimate
//   - CANCELLED and COMPLETED projects accept no further mutation
//
// MaterialCost may exceed CollectedAmount; the settlement calculator caps the fee.
type Project struct {
	id        kernel.UUID
	plannerID kernel.UUID

	// floristID is nil until a florist takes the work
	floristID *kernel.UUID

	fundingStatus    FundingStatus
	productionStatus ProductionStatus

	collectedAmount     int64
	targetAmount        int64
	materialCost        int64
	materialDescription string

	deliveryDateTime time.Time

	// settlement is frozen at cancellation and never recomputed
	settlement  *settlement.CancellationEstimate
	cancelledAt *time.Time

	version int64
	events  []DomainEvent

	isConstructed bool
}

// NewProject creates a DRAFT project with nothing collected yet.
//
// Example:
//
//	p, err := project.NewProject(kernel.NewUUID(), plannerID, 300000, deliveryAt)
//	if err != nil {
//	    return err
//	}
func NewProject(id, plannerID kernel.UUID, targetAmount int64, deliveryDateTime time.Time) (*Project, error) {
	p := &Project{
		fundingStatus:    FundingDraft,
		productionStatus: ProductionUnset,
		version:          1,
		isConstructed:    true,
	}

	if err := errors.Join(
		p.setID(id),
		p.setPlannerID(plannerID),
		p.setTargetAmount(targetAmount),
		p.setDeliveryDateTime(deliveryDateTime),
	); err != nil {
		return nil, err
	}

	return p, nil
}

// Snapshot is the persisted state of a project.
type Snapshot struct {
	ID                  kernel.UUID
	PlannerID           kernel.UUID
	FloristID           *kernel.UUID
	FundingStatus       FundingStatus
	ProductionStatus    ProductionStatus
	CollectedAmount     int64
	TargetAmount        int64
	MaterialCost        int64
	MaterialDescription string
	DeliveryDateTime    time.Time
	Settlement          *settlement.CancellationEstimate
	CancelledAt         *time.Time
	Version             int64
}

// RestoreProject rebuilds a project read from persistence and checks that the
// combination of statuses, amounts and settlement is consistent.
func RestoreProject(s Snapshot) (*Project, error) {
	p := &Project{
		fundingStatus:       s.FundingStatus,
		productionStatus:    s.ProductionStatus,
		materialDescription: s.MaterialDescription,
		version:             s.Version,
		isConstructed:       true,
	}

	if err := errors.Join(
		p.setID(s.ID),
		p.setPlannerID(s.PlannerID),
		p.setFloristID(s.FloristID),
		p.setTargetAmount(s.TargetAmount),
		p.setCollectedAmount(s.CollectedAmount),
		p.setMaterialCost(s.MaterialCost),
		p.setDeliveryDateTime(s.DeliveryDateTime),
		s.FundingStatus.Validate(),
		s.ProductionStatus.Validate(),
		p.setSettlement(s.Settlement),
		p.setCancelledAt(s.CancelledAt),
	); err != nil {
		return nil, err
	}

	if err := p.checkConsistency(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate ensures the Project was built by one of the constructors.
func (p *Project) Validate() error {
	if p == nil || !p.isConstructed {
		return ErrProjectIsNotConstructed
	}
	return nil
}

func (p *Project) ID() kernel.UUID { return p.id }
func (p *Project) PlannerID() kernel.UUID { return p.plannerID }
func (p *Project) FundingStatus() FundingStatus { return p.fundingStatus }
func (p *Project) ProductionStatus() ProductionStatus { return p.productionStatus }
func (p *Project) CollectedAmount() int64 { return p.collectedAmount }
func (p *Project) TargetAmount() int64 { return p.targetAmount }
func (p *Project) MaterialCost() int64 { return p.materialCost }
func (p *Project) MaterialDescription() string { return p.materialDescription }
func (p *Project) DeliveryDateTime() time.Time { return p.deliveryDateTime }
func (p *Project) Version() int64 { return p.version }

// FloristID returns the assigned florist, or nil when nobody has taken the work.
func (p *Project) FloristID() *kernel.UUID {
	if p.floristID == nil {
		return nil
	}
	id := *p.floristID
	return &id
}

// Settlement returns the frozen cancellation estimate, or nil when the
// project has not been cancelled.
func (p *Project) Settlement() *settlement.CancellationEstimate {
	if p.settlement == nil {
		return nil
	}
	e := *p.settlement
	return &e
}

func (p *Project) CancelledAt() *time.Time {
	if p.cancelledAt == nil {
		return nil
	}
	at := *p.cancelledAt
	return &at
}

// IsTerminal reports whether the project is CANCELLED or COMPLETED.
func (p *Project) IsTerminal() bool {
	return p.fundingStatus.IsTerminal()
}

// CurrentStep is the zero-based index of the production status in
// ProductionSteps, -1 while UNSET.
func (p *Project) CurrentStep() int {
	return p.productionStatus.Step()
}

// Progress is the delivery tracker percentage.
func (p *Project) Progress() int {
	return p.productionStatus.Progress()
}

// IncrementVersion is called by the repository once an update has been written.
func (p *Project) IncrementVersion() {
	p.version++
}

// DomainEvents returns the events recorded since the last ClearDomainEvents.
func (p *Project) DomainEvents() []DomainEvent {
	return slices.Clone(p.events)
}

func (p *Project) ClearDomainEvents() {
	p.events = nil
}

// SubmitForApproval moves a DRAFT project to PENDING_APPROVAL.
func (p *Project) SubmitForApproval() error {
	return p.moveFunding(FundingDraft, FundingPendingApproval)
}

// Approve opens the project for pledges.
func (p *Project) Approve() error {
	return p.moveFunding(FundingPendingApproval, FundingFundraising)
}

func (p *Project) Reject() error {
	return p.moveFunding(FundingPendingApproval, FundingRejected)
}

// RescheduleDelivery changes the delivery date. Once fundraising has started the
// date is fixed, because supporters have already been shown settlement figures
// computed from it.
func (p *Project) RescheduleDelivery(deliveryDateTime time.Time) error {
	if p.fundingStatus.HasStartedFundraising() {
		return errs.NewValueIsInvalidErrorWithCause("deliveryDateTime",
			fmt.Errorf("cannot change while %s", p.fundingStatus))
	}
	return p.setDeliveryDateTime(deliveryDateTime)
}

// AssignFlorist records the florist who took the work. A florist can be
// replaced only until production has started.
func (p *Project) AssignFlorist(floristID kernel.UUID) error {
	if err := floristID.Validate(); err != nil {
		return err
	}
	if p.IsTerminal() {
		return p.alreadyTerminal(ActionAssignFlorist)
	}
	if p.productionStatus != ProductionUnset {
		return errs.NewValueIsInvalidErrorWithCause("floristID",
			fmt.Errorf("production is already %s", p.productionStatus))
	}
	p.floristID = &floristID
	return nil
}

// Advance moves production to the requested status.
//
// The checks run in this order:
//   - the actor must be the assigned florist (ErrUnauthorized)
//   - the project must not be CANCELLED or COMPLETED (ErrAlreadyTerminal)
//   - fundraising must have started (ErrNotFundraising)
//   - requested must be exactly the next step (ErrInvalidTransition); from
//     UNSET only ACCEPTED is allowed, and repeating the current status is rejected
//
// On success a ProductionStatusChanged event is recorded. Reaching COMPLETED
// also completes the funding side, which makes the project terminal.
//
// Example:
//
//	if err := p.Advance(actor, project.ProductionProcessing, clock.Now()); err != nil {
//	    return err
//	}
func (p *Project) Advance(actor kernel.Actor, requested ProductionStatus, at time.Time) error {
	if err := actor.Validate(); err != nil {
		return err
	}

	if !p.isFlorist(actor.ID()) {
		return p.unauthorized(actor, ActionAdvance)
	}

	if p.IsTerminal() {
		return p.alreadyTerminal(ActionAdvance)
	}

	if p.fundingStatus != FundingFundraising {
		return p.notFundraising(ActionAdvance)
	}

	if !p.productionStatus.IsNext(requested) {
		return &InvalidTransitionError{
			ProjectID: p.id,
			Current:   p.productionStatus,
			Requested: requested,
		}
	}

	old := p.productionStatus
	p.productionStatus = requested
	if requested == ProductionCompleted {
		p.fundingStatus = FundingCompleted
	}

	p.raise(ProductionStatusChanged{
		EventHeader: newEventHeader(p.id, at),
		Old:         old,
		New:         requested,
		FloristID:   actor.ID(),
	})
	return nil
}

// CanCancel checks that actor may cancel the project right now: the planner
// or an operator, on a project that is not yet terminal.
func (p *Project) CanCancel(actor kernel.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if !actor.ID().IsEqual(p.plannerID) && !actor.IsOperator() {
		return p.unauthorized(actor, ActionCancel)
	}
	if p.IsTerminal() {
		return p.alreadyTerminal(ActionCancel)
	}
	return nil
}

// CancellationEstimate previews the settlement for cancelling at asOf. It has
// no side effects. A cancelled project returns its frozen estimate unchanged;
// a completed one cannot be cancelled anymore.
func (p *Project) CancellationEstimate(asOf time.Time) (settlement.CancellationEstimate, error) {
	if p.settlement != nil {
		return *p.settlement, nil
	}
	if p.fundingStatus == FundingCompleted {
		return settlement.CancellationEstimate{}, p.alreadyTerminal(ActionPreview)
	}

	estimate, err := settlement.Estimate(settlement.Inputs{
		CollectedAmount:  p.collectedAmount,
		MaterialCost:     p.materialCost,
		DeliveryDateTime: p.deliveryDateTime,
	}, asOf)
	if err != nil {
		return settlement.CancellationEstimate{}, NewInvalidProjectStateError(p.id, err)
	}
	return estimate, nil
}

// Cancel settles and cancels the project in one step. The estimate computed at
// asOf is frozen on the project and is what every later read returns.
//
// shares is the per-supporter split of the refund. It may be empty; when it is
// not, it must add up to the refund amount exactly.
//
// Recorded events: ProjectCancelled, RefundRequested (only when something is
// refunded) and ChatModeChanged to post_cancellation.
func (p *Project) Cancel(
	actor kernel.Actor,
	asOf time.Time,
	shares []settlement.RefundShare,
) (settlement.CancellationEstimate, error) {
	if err := p.CanCancel(actor); err != nil {
		return settlement.CancellationEstimate{}, err
	}

	estimate, err := p.CancellationEstimate(asOf)
	if err != nil {
		return settlement.CancellationEstimate{}, err
	}

	if len(shares) > 0 && settlement.SumShares(shares) != estimate.RefundAmount() {
		return settlement.CancellationEstimate{}, NewInvalidProjectStateError(p.id,
			errs.NewValueIsInvalidErrorWithCause("shares", fmt.Errorf(
				"shares add up to %d, refund is %d", settlement.SumShares(shares), estimate.RefundAmount())))
	}

	cancelledAt := asOf.UTC()
	p.fundingStatus = FundingCancelled
	p.settlement = &estimate
	p.cancelledAt = &cancelledAt

	p.raise(ProjectCancelled{
		EventHeader:  newEventHeader(p.id, asOf),
		RefundAmount: estimate.RefundAmount(),
		TotalFee:     estimate.TotalFee(),
		Tier:         estimate.Tier().String(),
		CancelledBy:  actor.ID(),
	})
	if estimate.RefundAmount() > 0 {
		p.raise(RefundRequested{
			EventHeader: newEventHeader(p.id, asOf),
			Amount:      estimate.RefundAmount(),
			Shares:      slices.Clone(shares),
		})
	}
	p.raise(ChatModeChanged{
		EventHeader: newEventHeader(p.id, asOf),
		Mode:        ChatModePostCancellation,
	})

	return estimate, nil
}

// DeclareMaterialCost records what the florist has committed to material
// purchases. The cost may only grow: spending cannot be taken back.
func (p *Project) DeclareMaterialCost(actor kernel.Actor, amount int64, description string, at time.Time) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if !p.isFlorist(actor.ID()) {
		return p.unauthorized(actor, ActionDeclareMaterialCost)
	}
	if p.IsTerminal() {
		return p.alreadyTerminal(ActionDeclareMaterialCost)
	}
	if p.fundingStatus != FundingFundraising {
		return p.notFundraising(ActionDeclareMaterialCost)
	}
	if amount < p.materialCost {
		return errs.NewValueIsOutOfRangeError("materialCost", amount, p.materialCost, int64(math.MaxInt64))
	}

	description = strings.TrimSpace(description)
	if len(description) > maxMaterialDescriptionLength {
		return errs.NewValueIsInvalidErrorWithCause("description",
			fmt.Errorf("longer than %d characters", maxMaterialDescriptionLength))
	}

	old := p.materialCost
	p.materialCost = amount
	p.materialDescription = description

	p.raise(MaterialCostDeclared{
		EventHeader: newEventHeader(p.id, at),
		Old:         old,
		New:         amount,
		Description: description,
		FloristID:   actor.ID(),
	})
	return nil
}

func (p *Project) raise(event DomainEvent) {
	p.events = append(p.events, event)
}

func (p *Project) isFlorist(actorID kernel.UUID) bool {
	return p.floristID != nil && p.floristID.IsEqual(actorID)
}

func (p *Project) unauthorized(actor kernel.Actor, action Action) error {
	return &UnauthorizedError{ProjectID: p.id, ActorID: actor.ID(), Action: action}
}

func (p *Project) alreadyTerminal(action Action) error {
	return &AlreadyTerminalError{ProjectID: p.id, FundingStatus: p.fundingStatus, Action: action}
}

func (p *Project) notFundraising(action Action) error {
	return &NotFundraisingError{ProjectID: p.id, FundingStatus: p.fundingStatus, Action: action}
}

func (p *Project) moveFunding(from, to FundingStatus) error {
	if p.IsTerminal() {
		return p.alreadyTerminal(ActionChangeFunding)
	}
	if p.fundingStatus != from {
		return errs.NewValueIsInvalidErrorWithCause("fundingStatus",
			fmt.Errorf("cannot move from %s to %s", p.fundingStatus, to))
	}
	p.fundingStatus = to
	return nil
}

func (p *Project) checkConsistency() error {
	var result error

	if !p.fundingStatus.HasStartedFundraising() && p.productionStatus != ProductionUnset {
		result = errors.Join(result, fmt.Errorf("production is %s while funding is %s",
			p.productionStatus, p.fundingStatus))
	}
	if p.productionStatus != ProductionUnset && p.floristID == nil {
		result = errors.Join(result, fmt.Errorf("production is %s without a florist", p.productionStatus))
	}
	if p.fundingStatus == FundingCompleted && p.productionStatus != ProductionCompleted {
		result = errors.Join(result, fmt.Errorf("funding is COMPLETED while production is %s", p.productionStatus))
	}
	if p.productionStatus == ProductionCompleted && p.fundingStatus != FundingCompleted {
		result = errors.Join(result, fmt.Errorf("production is COMPLETED while funding is %s", p.fundingStatus))
	}

	cancelled := p.fundingStatus == FundingCancelled
	if cancelled != (p.settlement != nil) || cancelled != (p.cancelledAt != nil) {
		result = errors.Join(result, fmt.Errorf("funding is %s but settlement presence is %t",
			p.fundingStatus, p.settlement != nil))
	}
	if p.settlement != nil && p.settlement.CollectedAmount() != p.collectedAmount {
		result = errors.Join(result, fmt.Errorf("settlement collected %d differs from project collected %d",
			p.settlement.CollectedAmount(), p.collectedAmount))
	}

	if result != nil {
		return NewInvalidProjectStateError(p.id, result)
	}
	return nil
}

func (p *Project) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	p.id = id
	return nil
}

func (p *Project) setPlannerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("plannerID", err)
	}
	p.plannerID = id
	return nil
}

func (p *Project) setFloristID(id *kernel.UUID) error {
	if id == nil {
		p.floristID = nil
		return nil
	}
	if err := id.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("floristID", err)
	}
	florist := *id
	p.floristID = &florist
	return nil
}

func (p *Project) setTargetAmount(amount int64) error {
	if amount <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("targetAmount",
			fmt.Errorf("%d is not greater than 0", amount))
	}
	p.targetAmount = amount
	return nil
}

func (p *Project) setCollectedAmount(amount int64) error {
	if amount < 0 {
		return errs.NewValueIsInvalidErrorWithCause("collectedAmount",
			fmt.Errorf("%d is negative", amount))
	}
	p.collectedAmount = amount
	return nil
}

func (p *Project) setMaterialCost(amount int64) error {
	if amount < 0 {
		return errs.NewValueIsInvalidErrorWithCause("materialCost",
			fmt.Errorf("%d is negative", amount))
	}
	p.materialCost = amount
	return nil
}

func (p *Project) setDeliveryDateTime(at time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredError("deliveryDateTime")
	}
	p.deliveryDateTime = at.UTC()
	return nil
}

func (p *Project) setSettlement(e *settlement.CancellationEstimate) error {
	if e == nil {
		p.settlement = nil
		return nil
	}
	if err := e.Validate(); err != nil {
		return err
	}
	frozen := *e
	p.settlement = &frozen
	return nil
}

func (p *Project) setCancelledAt(at *time.Time) error {
	if at == nil {
		p.cancelledAt = nil
		return nil
	}
	if at.IsZero() {
		return errs.NewValueIsInvalidErrorWithCause("cancelledAt", errors.New("zero time"))
	}
	cancelledAt := at.UTC()
	p.cancelledAt = &cancelledAt
	return nil
}
