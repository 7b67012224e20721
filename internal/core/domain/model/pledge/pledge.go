package pledge

import (
	"errors"
	"fmt"
	"time"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/pkg/errs"
	"flowerstand/internal/pkg/guard"
)

var ErrPledgeIsNotConstructed = errors.New("Pledge must be created via NewPledge or RestorePledge")

// Pledge is one supporter's contribution to a project's collected amount.
type Pledge struct {
	id          kernel.UUID
	projectID   kernel.UUID
	supporterID kernel.UUID
	amount      int64
	pledgedAt   time.Time

	guard guard.ConstructorGuard
}

// NewPledge validates and creates a pledge. Amount must be positive.
func NewPledge(id, projectID, supporterID kernel.UUID, amount int64, pledgedAt time.Time) (*Pledge, error) {
	p := &Pledge{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		p.setID(id),
		p.setProjectID(projectID),
		p.setSupporterID(supporterID),
		p.setAmount(amount),
		p.setPledgedAt(pledgedAt),
	); err != nil {
		return nil, err
	}

	return p, nil
}

// RestorePledge rebuilds a pledge read from persistence.
func RestorePledge(id, projectID, supporterID kernel.UUID, amount int64, pledgedAt time.Time) (*Pledge, error) {
	return NewPledge(id, projectID, supporterID, amount, pledgedAt)
}

func (p *Pledge) Validate() error {
	if p == nil {
		return ErrPledgeIsNotConstructed
	}
	return p.guard.Validate(ErrPledgeIsNotConstructed)
}

func (p *Pledge) ID() kernel.UUID { return p.id }
func (p *Pledge) ProjectID() kernel.UUID { return p.projectID }
func (p *Pledge) SupporterID() kernel.UUID { return p.supporterID }
func (p *Pledge) Amount() int64 { return p.amount }
func (p *Pledge) PledgedAt() time.Time { return p.pledgedAt }

// Total sums the amounts of the given pledges.
func Total(pledges []*Pledge) int64 {
	var total int64
	for _, p := range pledges {
		total += p.amount
	}
	return total
}

func (p *Pledge) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	p.id = id
	return nil
}

func (p *Pledge) setProjectID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("projectID", err)
	}
	p.projectID = id
	return nil
}

func (p *Pledge) setSupporterID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("supporterID", err)
	}
	p.supporterID = id
	return nil
}

func (p *Pledge) setAmount(amount int64) error {
	if amount <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%d is not greater than 0", amount))
	}
	p.amount = amount
	return nil
}

func (p *Pledge) setPledgedAt(at time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredError("pledgedAt")
	}
	p.pledgedAt = at.UTC()
	return nil
}
