package db

import (
	"time"

	"github.com/terraincognita07/ovella/internal/models"
	"gorm.io/gorm"
)

type CycleDayRepository struct {
	database *gorm.DB
}

func NewCycleDayRepository(database *gorm.DB) *CycleDayRepository {
	return &CycleDayRepository{database: database}
}

func (repo *CycleDayRepository) ListByUser(userID uint) ([]models.CycleDay, error) {
	days := make([]models.CycleDay, 0)
	err := repo.database.
		Where("user_id = ?", userID).
		Order("date ASC, id ASC").
		Find(&days).Error
	return days, err
}

func (repo *CycleDayRepository) ListByCycle(userID uint, cycleID uint) ([]models.CycleDay, error) {
	days := make([]models.CycleDay, 0)
	err := repo.database.
		Where("user_id = ? AND cycle_id = ?", userID, cycleID).
		Order("date ASC, id ASC").
		Find(&days).Error
	return days, err
}

func (repo *CycleDayRepository) ListByUserRange(userID uint, fromStart *time.Time, toEnd *time.Time) ([]models.CycleDay, error) {
	query := repo.database.Model(&models.CycleDay{}).Where("user_id = ?", userID)
	if fromStart != nil {
		query = query.Where("date >= ?", *fromStart)
	}
	if toEnd != nil {
		query = query.Where("date < ?", *toEnd)
	}

	days := make([]models.CycleDay, 0)
	err := query.Order("date ASC, id ASC").Find(&days).Error
	return days, err
}

func (repo *CycleDayRepository) FindByUserAndDayRange(userID uint, dayStart time.Time, dayEnd time.Time) (models.CycleDay, bool, error) {
	day := models.CycleDay{}
	result := repo.database.
		Where("user_id = ? AND date >= ? AND date < ?", userID, dayStart, dayEnd).
		Order("date DESC, id DESC").
		Limit(1).
		Find(&day)
	if result.Error != nil {
		return models.CycleDay{}, false, result.Error
	}
	return day, result.RowsAffected > 0, nil
}

// LastDayOfCycle returns the latest logged day of a cycle, if any.
func (repo *CycleDayRepository) LastDayOfCycle(userID uint, cycleID uint) (models.CycleDay, bool, error) {
	day := models.CycleDay{}
	result := repo.database.
		Where("user_id = ? AND cycle_id = ?", userID, cycleID).
		Order("date DESC, id DESC").
		Limit(1).
		Find(&day)
	if result.Error != nil {
		return models.CycleDay{}, false, result.Error
	}
	return day, result.RowsAffected > 0, nil
}

func (repo *CycleDayRepository) Create(day *models.CycleDay) error {
	return repo.database.Create(day).Error
}

func (repo *CycleDayRepository) Save(day *models.CycleDay) error {
	return repo.database.Save(day).Error
}

func (repo *CycleDayRepository) DeleteByUserAndDayRange(userID uint, dayStart time.Time, dayEnd time.Time) error {
	return repo.database.
		Where("user_id = ? AND date >= ? AND date < ?", userID, dayStart, dayEnd).
		Delete(&models.CycleDay{}).Error
}

func (repo *CycleDayRepository) DeleteAllByUser(userID uint) error {
	return repo.database.Where("user_id = ?", userID).Delete(&models.CycleDay{}).Error
}
