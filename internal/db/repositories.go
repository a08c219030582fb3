package db

import "gorm.io/gorm"

type Repositories struct {
	Users     *UserRepository
	Cycles    *CycleRepository
	CycleDays *CycleDayRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:     NewUserRepository(database),
		Cycles:    NewCycleRepository(database),
		CycleDays: NewCycleDayRepository(database),
	}
}
