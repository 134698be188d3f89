package booking

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thesuite/booking-api/internal/dto"
	"github.com/thesuite/booking-api/internal/httperr"
	"github.com/thesuite/booking-api/internal/models"
)

// Totals is what a service plus its picked add-ons occupies and costs.
type Totals struct {
	DurationMin int
	Amount      float64
	AddonNames  []string
}

func (t Totals) RequiredSlots() int {
	return RequiredSlots(t.DurationMin)
}

// ServiceTotals sums the service and the requested add-ons. Unknown or
// inactive add-ons are a business error.
func ServiceTotals(svc *models.Service, addonIDs []uint) (Totals, error) {
	t := Totals{DurationMin: svc.DurationMin, Amount: svc.Price}

	byID := make(map[uint]models.ServiceAddon, len(svc.Addons))
	for _, a := range svc.Addons {
		byID[a.ID] = a
	}

	seen := make(map[uint]struct{}, len(addonIDs))
	for _, id := range addonIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		a, ok := byID[id]
		if !ok || !a.Active {
			return Totals{}, httperr.ErrBusiness("addon_not_found")
		}
		t.DurationMin += a.DurationMin
		t.Amount += a.Price
		t.AddonNames = append(t.AddonNames, a.Name)
	}

	t.Amount = RoundCurrency(t.Amount)
	return t, nil
}

func (t Totals) AddonSummary() string {
	return strings.Join(t.AddonNames, ", ")
}

// DecodePolicy reads the professional's stored policy column.
func DecodePolicy(raw []byte) (*CancellationPolicy, error) {
	p, err := dto.ToSingle[CancellationPolicy](json.RawMessage(raw))
	if err != nil {
		return nil, fmt.Errorf("cancellation policy: %w", err)
	}
	if p == nil || len(p.Rules) == 0 {
		return nil, nil
	}
	return p, nil
}

// EncodePolicy is the inverse of DecodePolicy; a nil or empty policy clears it.
func EncodePolicy(p *CancellationPolicy) ([]byte, error) {
	if p == nil || len(p.Rules) == 0 {
		return nil, nil
	}
	return json.Marshal(CancellationPolicy{Rules: p.Sorted()})
}
