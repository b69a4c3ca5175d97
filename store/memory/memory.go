// Package memory provides an in-memory DataProvider for tests and demos.
package memory

import (
	"context"
	"sync"

	"github.com/fleetline/loan-scheduler/schedule"
)

// =============================================================================
// MEMORY PROVIDER - Map-backed implementation (for testing/dev)
// =============================================================================

// Provider is a map-backed schedule.DataProvider. Seed it with the Set*
// methods; reads copy, so a running pipeline never sees later mutation.
type Provider struct {
	mu          sync.RWMutex
	vehicles    []schedule.Vehicle
	partners    []schedule.Partner
	eligibility []schedule.Eligibility
	rules       []schedule.Rule
	history     []schedule.LoanRecord
	activity    []schedule.Activity
	capacity    []schedule.CapacitySlot
}

func NewProvider() *Provider {
	return &Provider{}
}

// Seeding

func (p *Provider) SetVehicles(rows ...schedule.Vehicle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vehicles = append([]schedule.Vehicle(nil), rows...)
}

func (p *Provider) SetPartners(rows ...schedule.Partner) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.partners = append([]schedule.Partner(nil), rows...)
}

func (p *Provider) SetApprovedMakes(rows ...schedule.Eligibility) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.eligibility = append([]schedule.Eligibility(nil), rows...)
}

func (p *Provider) SetRules(rows ...schedule.Rule) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rules = append([]schedule.Rule(nil), rows...)
}

func (p *Provider) SetLoanHistory(rows ...schedule.LoanRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = append([]schedule.LoanRecord(nil), rows...)
}

func (p *Provider) SetCurrentActivity(rows ...schedule.Activity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.activity = append([]schedule.Activity(nil), rows...)
}

func (p *Provider) SetOpsCapacity(rows ...schedule.CapacitySlot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.capacity = append([]schedule.CapacitySlot(nil), rows...)
}

// schedule.DataProvider

func (p *Provider) Vehicles(_ context.Context, office schedule.Office) ([]schedule.Vehicle, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []schedule.Vehicle
	for _, v := range p.vehicles {
		if v.Office == office {
			out = append(out, v)
		}
	}
	return out, nil
}

func (p *Provider) Partners(_ context.Context) ([]schedule.Partner, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]schedule.Partner(nil), p.partners...), nil
}

func (p *Provider) ApprovedMakes(_ context.Context) ([]schedule.Eligibility, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]schedule.Eligibility(nil), p.eligibility...), nil
}

func (p *Provider) Rules(_ context.Context) ([]schedule.Rule, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]schedule.Rule(nil), p.rules...), nil
}

func (p *Provider) LoanHistory(_ context.Context) ([]schedule.LoanRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]schedule.LoanRecord(nil), p.history...), nil
}

func (p *Provider) CurrentActivity(_ context.Context) ([]schedule.Activity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]schedule.Activity(nil), p.activity...), nil
}

func (p *Provider) OpsCapacity(_ context.Context, office schedule.Office, from, to schedule.Day) ([]schedule.CapacitySlot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []schedule.CapacitySlot
	for _, slot := range p.capacity {
		if slot.Office == office && slot.Date.AfterOrEqual(from) && slot.Date.BeforeOrEqual(to) {
			out = append(out, slot)
		}
	}
	return out, nil
}
