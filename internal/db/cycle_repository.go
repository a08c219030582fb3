package db

import (
	"time"

	"github.com/terraincognita07/ovella/internal/models"
	"gorm.io/gorm"
)

type CycleRepository struct {
	database *gorm.DB
}

func NewCycleRepository(database *gorm.DB) *CycleRepository {
	return &CycleRepository{database: database}
}

func (repo *CycleRepository) ListByUser(userID uint) ([]models.Cycle, error) {
	cycles := make([]models.Cycle, 0)
	err := repo.database.
		Where("user_id = ?", userID).
		Order("start_date ASC, id ASC").
		Find(&cycles).Error
	return cycles, err
}

func (repo *CycleRepository) FindByID(userID uint, cycleID uint) (models.Cycle, bool, error) {
	cycle := models.Cycle{}
	result := repo.database.
		Where("user_id = ? AND id = ?", userID, cycleID).
		Limit(1).
		Find(&cycle)
	if result.Error != nil {
		return models.Cycle{}, false, result.Error
	}
	return cycle, result.RowsAffected > 0, nil
}

func (repo *CycleRepository) FindActive(userID uint) (models.Cycle, bool, error) {
	cycle := models.Cycle{}
	result := repo.database.
		Where("user_id = ? AND active = ?", userID, true).
		Order("start_date DESC, id DESC").
		Limit(1).
		Find(&cycle)
	if result.Error != nil {
		return models.Cycle{}, false, result.Error
	}
	return cycle, result.RowsAffected > 0, nil
}

// FindCovering returns the cycle whose span contains day: either an ended cycle
// with start <= day <= end, or an active cycle with start <= day.
func (repo *CycleRepository) FindCovering(userID uint, day time.Time) (models.Cycle, bool, error) {
	cycle := models.Cycle{}
	result := repo.database.
		Where("user_id = ? AND start_date <= ? AND (end_date >= ? OR (active = ? AND end_date IS NULL))",
			userID, day, day, true).
		Order("start_date DESC, id DESC").
		Limit(1).
		Find(&cycle)
	if result.Error != nil {
		return models.Cycle{}, false, result.Error
	}
	return cycle, result.RowsAffected > 0, nil
}

func (repo *CycleRepository) FindLatest(userID uint) (models.Cycle, bool, error) {
	cycle := models.Cycle{}
	result := repo.database.
		Where("user_id = ?", userID).
		Order("start_date DESC, id DESC").
		Limit(1).
		Find(&cycle)
	if result.Error != nil {
		return models.Cycle{}, false, result.Error
	}
	return cycle, result.RowsAffected > 0, nil
}

func (repo *CycleRepository) Create(cycle *models.Cycle) error {
	return repo.database.Create(cycle).Error
}

func (repo *CycleRepository) Save(cycle *models.Cycle) error {
	return repo.database.Save(cycle).Error
}

func (repo *CycleRepository) DeleteAllByUser(userID uint) error {
	return repo.database.Where("user_id = ?", userID).Delete(&models.Cycle{}).Error
}

// DeleteWithDays removes the cycle and its logged days in one transaction.
func (repo *CycleRepository) DeleteWithDays(userID uint, cycleID uint) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND cycle_id = ?", userID, cycleID).Delete(&models.CycleDay{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND id = ?", userID, cycleID).Delete(&models.Cycle{}).Error
	})
}
