package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"yarey/backend/internal/domain"
	"yarey/backend/internal/store"
)

func (s *Service) ListStaff(ctx context.Context) ([]domain.Staff, error) {
	return store.ListRecords[domain.Staff](ctx, s.repo, domain.CollectionStaff)
}

// UpsertStaff creates a staff member when ID is empty or unknown, otherwise
// replaces the profile. Active is kept as stored unless the request sets it;
// new profiles start active.
func (s *Service) UpsertStaff(ctx context.Context, req domain.StaffUpsertRequest) (domain.Staff, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Staff{}, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	if req.CommissionRate.IsNegative() || req.CommissionRate.GreaterThan(domain.AmountFromInt(1)) {
		return domain.Staff{}, fmt.Errorf("%w: commission rate must be between 0 and 1", ErrInvalidRequest)
	}
	if req.BaseSalary.IsNegative() || req.HourlyRate.IsNegative() {
		return domain.Staff{}, fmt.Errorf("%w: pay figures must not be negative", ErrInvalidRequest)
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = domain.RoleSales
	}

	staff := domain.Staff{
		ID:             strings.TrimSpace(req.ID),
		Name:           name,
		Nickname:       strings.TrimSpace(req.Nickname),
		Role:           role,
		Active:         true,
		CommissionRate: req.CommissionRate,
		BaseSalary:     req.BaseSalary,
		HourlyRate:     req.HourlyRate,
		PhotoURL:       strings.TrimSpace(req.PhotoURL),
	}

	if staff.ID != "" {
		existing, err := store.GetRecord[domain.Staff](ctx, s.repo, domain.CollectionStaff, staff.ID)
		switch {
		case err == nil:
			staff.Active = existing.Active
		case !errors.Is(err, store.ErrNotFound):
			return domain.Staff{}, err
		}
	}
	if req.Active != nil {
		staff.Active = *req.Active
	}

	if staff.ID == "" {
		id, err := store.CreateRecord(ctx, s.repo, domain.CollectionStaff, staff)
		if err != nil {
			return domain.Staff{}, err
		}
		staff.ID = id
		return staff, nil
	}
	if err := store.PutRecord(ctx, s.repo, domain.CollectionStaff, staff.ID, staff); err != nil {
		return domain.Staff{}, err
	}
	return staff, nil
}

// DeactivateStaff is a soft delete; the record stays for historical
// attribution on past bookings.
func (s *Service) DeactivateStaff(ctx context.Context, id string) (domain.Staff, error) {
	staff, err := store.GetRecord[domain.Staff](ctx, s.repo, domain.CollectionStaff, strings.TrimSpace(id))
	if err != nil {
		return domain.Staff{}, err
	}
	staff.Active = false
	if err := store.PutRecord(ctx, s.repo, domain.CollectionStaff, staff.ID, staff); err != nil {
		return domain.Staff{}, err
	}
	return *staff, nil
}

func (s *Service) ListTreatments(ctx context.Context) ([]domain.Treatment, error) {
	return store.ListRecords[domain.Treatment](ctx, s.repo, domain.CollectionTreatments)
}

func (s *Service) UpsertTreatment(ctx context.Context, req domain.TreatmentUpsertRequest) (domain.Treatment, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Treatment{}, fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}
	if req.DurationMin < 0 || req.PriceTHB.IsNegative() {
		return domain.Treatment{}, fmt.Errorf("%w: duration and price must not be negative", ErrInvalidRequest)
	}

	treatment := domain.Treatment{
		ID:          strings.TrimSpace(req.ID),
		Title:       title,
		Category:    strings.TrimSpace(req.Category),
		DurationMin: req.DurationMin,
		PriceTHB:    req.PriceTHB,
		Description: strings.TrimSpace(req.Description),
		Active:      true,
		Includes:    req.Includes,
	}
	if req.Active != nil {
		treatment.Active = *req.Active
	}

	if treatment.ID == "" {
		id, err := store.CreateRecord(ctx, s.repo, domain.CollectionTreatments, treatment)
		if err != nil {
			return domain.Treatment{}, err
		}
		treatment.ID = id
		return treatment, nil
	}
	if err := store.PutRecord(ctx, s.repo, domain.CollectionTreatments, treatment.ID, treatment); err != nil {
		return domain.Treatment{}, err
	}
	return treatment, nil
}

// OutsourceRate is the hourly cost of an outsourced therapist. A missing or
// non-positive setting falls back to the configured default.
func (s *Service) OutsourceRate(ctx context.Context) (domain.Amount, error) {
	settings, err := store.GetRecord[domain.OutsourceSettings](ctx, s.repo, domain.CollectionSettings, domain.SettingsOutsourceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidDocument) {
			return s.outsourceRate, nil
		}
		return domain.Amount{}, err
	}
	if !settings.Rate.IsPositive() {
		return s.outsourceRate, nil
	}
	return settings.Rate, nil
}

func (s *Service) SetOutsourceRate(ctx context.Context, rate domain.Amount) (domain.Amount, error) {
	if rate.IsNegative() {
		return domain.Amount{}, fmt.Errorf("%w: rate must not be negative", ErrInvalidRequest)
	}
	settings := domain.OutsourceSettings{Rate: rate}
	if err := store.PutRecord(ctx, s.repo, domain.CollectionSettings, domain.SettingsOutsourceID, settings); err != nil {
		return domain.Amount{}, err
	}
	return rate, nil
}
