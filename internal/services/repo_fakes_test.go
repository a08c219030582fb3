package services

import (
	"sort"
	"time"

	"github.com/terraincognita07/ovella/internal/models"
)

type fakeCycleRepo struct {
	cycles []models.Cycle
	nextID uint
}

func newFakeCycleRepo(cycles ...models.Cycle) *fakeCycleRepo {
	repo := &fakeCycleRepo{}
	for _, cycle := range cycles {
		cycle := cycle
		_ = repo.Create(&cycle)
	}
	return repo
}

func (repo *fakeCycleRepo) sorted(userID uint) []models.Cycle {
	result := make([]models.Cycle, 0, len(repo.cycles))
	for _, cycle := range repo.cycles {
		if cycle.UserID == userID {
			result = append(result, cycle)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartDate.Before(result[j].StartDate)
	})
	return result
}

func (repo *fakeCycleRepo) ListByUser(userID uint) ([]models.Cycle, error) {
	return repo.sorted(userID), nil
}

func (repo *fakeCycleRepo) FindByID(userID uint, cycleID uint) (models.Cycle, bool, error) {
	for _, cycle := range repo.cycles {
		if cycle.UserID == userID && cycle.ID == cycleID {
			return cycle, true, nil
		}
	}
	return models.Cycle{}, false, nil
}

func (repo *fakeCycleRepo) FindActive(userID uint) (models.Cycle, bool, error) {
	for _, cycle := range repo.cycles {
		if cycle.UserID == userID && cycle.Active {
			return cycle, true, nil
		}
	}
	return models.Cycle{}, false, nil
}

func (repo *fakeCycleRepo) FindCovering(userID uint, day time.Time) (models.Cycle, bool, error) {
	sorted := repo.sorted(userID)
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Contains(day) {
			return sorted[i], true, nil
		}
	}
	return models.Cycle{}, false, nil
}

func (repo *fakeCycleRepo) FindLatest(userID uint) (models.Cycle, bool, error) {
	sorted := repo.sorted(userID)
	if len(sorted) == 0 {
		return models.Cycle{}, false, nil
	}
	return sorted[len(sorted)-1], true, nil
}

func (repo *fakeCycleRepo) Create(cycle *models.Cycle) error {
	repo.nextID++
	cycle.ID = repo.nextID
	repo.cycles = append(repo.cycles, *cycle)
	return nil
}

func (repo *fakeCycleRepo) Save(cycle *models.Cycle) error {
	for i := range repo.cycles {
		if repo.cycles[i].ID == cycle.ID {
			repo.cycles[i] = *cycle
			return nil
		}
	}
	repo.cycles = append(repo.cycles, *cycle)
	return nil
}

func (repo *fakeCycleRepo) DeleteWithDays(userID uint, cycleID uint) error {
	kept := repo.cycles[:0]
	for _, cycle := range repo.cycles {
		if cycle.UserID == userID && cycle.ID == cycleID {
			continue
		}
		kept = append(kept, cycle)
	}
	repo.cycles = kept
	return nil
}

type fakeDayRepo struct {
	days   []models.CycleDay
	nextID uint
}

func newFakeDayRepo(days ...models.CycleDay) *fakeDayRepo {
	repo := &fakeDayRepo{}
	for _, day := range days {
		day := day
		_ = repo.Create(&day)
	}
	return repo
}

func (repo *fakeDayRepo) sorted(userID uint) []models.CycleDay {
	result := make([]models.CycleDay, 0, len(repo.days))
	for _, day := range repo.days {
		if day.UserID == userID {
			result = append(result, day)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result
}

func (repo *fakeDayRepo) ListByUser(userID uint) ([]models.CycleDay, error) {
	return repo.sorted(userID), nil
}

func (repo *fakeDayRepo) ListByUserRange(userID uint, fromStart *time.Time, toEnd *time.Time) ([]models.CycleDay, error) {
	result := make([]models.CycleDay, 0)
	for _, day := range repo.sorted(userID) {
		if fromStart != nil && day.Date.Before(*fromStart) {
			continue
		}
		if toEnd != nil && !day.Date.Before(*toEnd) {
			continue
		}
		result = append(result, day)
	}
	return result, nil
}

func (repo *fakeDayRepo) LastDayOfCycle(userID uint, cycleID uint) (models.CycleDay, bool, error) {
	found := models.CycleDay{}
	exists := false
	for _, day := range repo.sorted(userID) {
		if day.CycleID == cycleID {
			found = day
			exists = true
		}
	}
	return found, exists, nil
}

func (repo *fakeDayRepo) FindByUserAndDayRange(userID uint, dayStart time.Time, dayEnd time.Time) (models.CycleDay, bool, error) {
	for _, day := range repo.days {
		if day.UserID == userID && !day.Date.Before(dayStart) && day.Date.Before(dayEnd) {
			return day, true, nil
		}
	}
	return models.CycleDay{}, false, nil
}

func (repo *fakeDayRepo) Create(day *models.CycleDay) error {
	repo.nextID++
	day.ID = repo.nextID
	repo.days = append(repo.days, *day)
	return nil
}

func (repo *fakeDayRepo) Save(day *models.CycleDay) error {
	for i := range repo.days {
		if repo.days[i].ID == day.ID {
			repo.days[i] = *day
			return nil
		}
	}
	repo.days = append(repo.days, *day)
	return nil
}

func (repo *fakeDayRepo) DeleteByUserAndDayRange(userID uint, dayStart time.Time, dayEnd time.Time) error {
	kept := repo.days[:0]
	for _, day := range repo.days {
		if day.UserID == userID && !day.Date.Before(dayStart) && day.Date.Before(dayEnd) {
			continue
		}
		kept = append(kept, day)
	}
	repo.days = kept
	return nil
}
