package services

import (
	"errors"
	"time"

	"github.com/terraincognita07/ovella/internal/models"
)

var (
	ErrCycleNotFound       = errors.New("cycle not found")
	ErrCycleOverlap        = errors.New("cycle overlaps an existing cycle")
	ErrStartNotAfterActive = errors.New("start date must be after the active cycle start")
	ErrDaysAfterStart      = errors.New("active cycle has logged days on or after the new start")
	ErrEndBeforeStart      = errors.New("end date precedes cycle start")
	ErrEndBeforeLastDay    = errors.New("end date precedes the last logged day")
	ErrEndOverlapsNext     = errors.New("end date reaches into the next cycle")
	ErrNotLatestCycle      = errors.New("only the most recent cycle can be reactivated")
)

type CycleRepository interface {
	ListByUser(userID uint) ([]models.Cycle, error)
	FindByID(userID uint, cycleID uint) (models.Cycle, bool, error)
	FindActive(userID uint) (models.Cycle, bool, error)
	FindCovering(userID uint, day time.Time) (models.Cycle, bool, error)
	FindLatest(userID uint) (models.Cycle, bool, error)
	Create(cycle *models.Cycle) error
	Save(cycle *models.Cycle) error
	DeleteWithDays(userID uint, cycleID uint) error
}

type CycleDayLocator interface {
	LastDayOfCycle(userID uint, cycleID uint) (models.CycleDay, bool, error)
}

type CycleService struct {
	cycles   CycleRepository
	days     CycleDayLocator
	location *time.Location
}

func NewCycleService(cycles CycleRepository, days CycleDayLocator, location *time.Location) *CycleService {
	if location == nil {
		location = time.UTC
	}
	return &CycleService{cycles: cycles, days: days, location: location}
}

func (service *CycleService) ListCycles(userID uint) ([]models.Cycle, error) {
	return service.cycles.ListByUser(userID)
}

func (service *CycleService) ActiveCycle(userID uint) (models.Cycle, bool, error) {
	return service.cycles.FindActive(userID)
}

func (service *CycleService) FindCycle(userID uint, cycleID uint) (models.Cycle, error) {
	cycle, found, err := service.cycles.FindByID(userID, cycleID)
	if err != nil {
		return models.Cycle{}, err
	}
	if !found {
		return models.Cycle{}, ErrCycleNotFound
	}
	return cycle, nil
}

// StartCycle opens a new active cycle on start. A currently active cycle is
// auto-ended the day before, provided none of its logged days would be
// stranded past the new start.
func (service *CycleService) StartCycle(userID uint, start time.Time, notes string) (models.Cycle, error) {
	startDay := DateAtLocation(start, service.location)

	latest, found, err := service.cycles.FindLatest(userID)
	if err != nil {
		return models.Cycle{}, err
	}
	if found {
		if latest.Active {
			if !startDay.After(latest.StartDate) {
				return models.Cycle{}, ErrStartNotAfterActive
			}
			lastDay, hasDay, err := service.days.LastDayOfCycle(userID, latest.ID)
			if err != nil {
				return models.Cycle{}, err
			}
			if hasDay && !lastDay.Date.Before(startDay) {
				return models.Cycle{}, ErrDaysAfterStart
			}
			previousEnd := startDay.AddDate(0, 0, -1)
			latest.EndDate = &previousEnd
			latest.Active = false
			if err := service.cycles.Save(&latest); err != nil {
				return models.Cycle{}, err
			}
		} else if latest.EndDate != nil && !startDay.After(*latest.EndDate) {
			return models.Cycle{}, ErrCycleOverlap
		}
	}

	cycle := models.Cycle{
		UserID:    userID,
		StartDate: startDay,
		Active:    true,
		Notes:     notes,
	}
	if err := service.cycles.Create(&cycle); err != nil {
		return models.Cycle{}, err
	}
	return cycle, nil
}

// EndCycle closes a cycle. A nil end defaults to the later of the start date
// and the last logged day; an explicit end is normalized to local midnight,
// may not precede either, and must stay strictly before the next cycle's
// start.
func (service *CycleService) EndCycle(userID uint, cycleID uint, end *time.Time) (models.Cycle, error) {
	cycle, err := service.FindCycle(userID, cycleID)
	if err != nil {
		return models.Cycle{}, err
	}

	lastDay, hasDay, err := service.days.LastDayOfCycle(userID, cycle.ID)
	if err != nil {
		return models.Cycle{}, err
	}

	endDay := cycle.StartDate
	if hasDay && lastDay.Date.After(endDay) {
		endDay = DateAtLocation(lastDay.Date, service.location)
	}
	if end != nil {
		endDay = DateAtLocation(*end, service.location)
		if endDay.Before(cycle.StartDate) {
			return models.Cycle{}, ErrEndBeforeStart
		}
		if hasDay && endDay.Before(DateAtLocation(lastDay.Date, service.location)) {
			return models.Cycle{}, ErrEndBeforeLastDay
		}
		next, hasNext, err := service.nextCycle(userID, cycle)
		if err != nil {
			return models.Cycle{}, err
		}
		if hasNext && !endDay.Before(next.StartDate) {
			return models.Cycle{}, ErrEndOverlapsNext
		}
	}

	cycle.EndDate = &endDay
	cycle.Active = false
	if err := service.cycles.Save(&cycle); err != nil {
		return models.Cycle{}, err
	}
	return cycle, nil
}

// nextCycle finds the user's cycle with the earliest start after this one.
func (service *CycleService) nextCycle(userID uint, cycle models.Cycle) (models.Cycle, bool, error) {
	all, err := service.cycles.ListByUser(userID)
	if err != nil {
		return models.Cycle{}, false, err
	}

	next := models.Cycle{}
	found := false
	for _, candidate := range all {
		if candidate.ID == cycle.ID || !candidate.StartDate.After(cycle.StartDate) {
			continue
		}
		if !found || candidate.StartDate.Before(next.StartDate) {
			next = candidate
			found = true
		}
	}
	return next, found, nil
}

// ReactivateCycle reopens the most recent cycle, clearing its end date.
func (service *CycleService) ReactivateCycle(userID uint, cycleID uint) (models.Cycle, error) {
	cycle, err := service.FindCycle(userID, cycleID)
	if err != nil {
		return models.Cycle{}, err
	}
	if cycle.Active {
		return cycle, nil
	}

	latest, found, err := service.cycles.FindLatest(userID)
	if err != nil {
		return models.Cycle{}, err
	}
	if !found || latest.ID != cycle.ID {
		return models.Cycle{}, ErrNotLatestCycle
	}

	cycle.EndDate = nil
	cycle.Active = true
	if err := service.cycles.Save(&cycle); err != nil {
		return models.Cycle{}, err
	}
	return cycle, nil
}

func (service *CycleService) DeleteCycle(userID uint, cycleID uint) error {
	if _, err := service.FindCycle(userID, cycleID); err != nil {
		return err
	}
	return service.cycles.DeleteWithDays(userID, cycleID)
}
