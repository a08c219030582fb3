package services

import (
	"errors"
	"time"

	"github.com/terraincognita07/ovella/internal/models"
)

const MaxDayNotesLength = 2000

var (
	ErrNoCycleForDate = errors.New("no cycle covers this date")
	ErrInvalidFlow    = errors.New("invalid flow value")
	ErrInvalidFluid   = errors.New("invalid cervical fluid value")
	ErrInvalidOPK     = errors.New("invalid opk value")
)

// DayEntryInput carries one day of raw observations. Temperature arrives in
// the user's display unit and is stored in Celsius.
type DayEntryInput struct {
	Temperature   *float64
	TempDisturbed bool
	CervicalFluid string
	OPK           string
	Flow          string
	Intercourse   bool
	Notes         string
}

func NormalizeDayEntryInput(input DayEntryInput, unit string) (DayEntryInput, error) {
	if input.Flow == "" {
		input.Flow = models.FlowNone
	}
	if !models.IsValidFlow(input.Flow) {
		return input, ErrInvalidFlow
	}
	if !models.IsValidCervicalFluid(input.CervicalFluid) {
		return input, ErrInvalidFluid
	}
	if !models.IsValidOPK(input.OPK) {
		return input, ErrInvalidOPK
	}

	if input.Temperature != nil {
		celsius, err := NormalizeTemperatureInput(*input.Temperature, unit)
		if err != nil {
			return input, err
		}
		input.Temperature = &celsius
	} else {
		input.TempDisturbed = false
	}

	input.Notes = TrimDayNotes(input.Notes)
	return input, nil
}

// TrimDayNotes caps notes at MaxDayNotesLength characters, cutting on a rune
// boundary so multi-byte text stays valid.
func TrimDayNotes(value string) string {
	if len(value) <= MaxDayNotesLength {
		return value
	}
	runes := []rune(value)
	if len(runes) <= MaxDayNotesLength {
		return value
	}
	return string(runes[:MaxDayNotesLength])
}

type CycleDayRepositoryPort interface {
	FindByUserAndDayRange(userID uint, dayStart time.Time, dayEnd time.Time) (models.CycleDay, bool, error)
	Create(day *models.CycleDay) error
	Save(day *models.CycleDay) error
	DeleteByUserAndDayRange(userID uint, dayStart time.Time, dayEnd time.Time) error
}

type CoveringCycleFinder interface {
	FindCovering(userID uint, day time.Time) (models.Cycle, bool, error)
}

type DayService struct {
	cycles   CoveringCycleFinder
	days     CycleDayRepositoryPort
	location *time.Location
}

func NewDayService(cycles CoveringCycleFinder, days CycleDayRepositoryPort, location *time.Location) *DayService {
	if location == nil {
		location = time.UTC
	}
	return &DayService{cycles: cycles, days: days, location: location}
}

// UpsertDay writes the observations for date into the cycle covering it.
// An input with no data deletes the stored day instead; the second return
// value reports whether a day remains stored.
func (service *DayService) UpsertDay(userID uint, date time.Time, input DayEntryInput, unit string) (models.CycleDay, bool, error) {
	dayStart, dayEnd := DayRange(date, service.location)

	cycle, covered, err := service.cycles.FindCovering(userID, dayStart)
	if err != nil {
		return models.CycleDay{}, false, err
	}
	if !covered {
		return models.CycleDay{}, false, ErrNoCycleForDate
	}

	normalized, err := NormalizeDayEntryInput(input, unit)
	if err != nil {
		return models.CycleDay{}, false, err
	}

	existing, exists, err := service.days.FindByUserAndDayRange(userID, dayStart, dayEnd)
	if err != nil {
		return models.CycleDay{}, false, err
	}

	day := models.CycleDay{
		CycleID:       cycle.ID,
		UserID:        userID,
		Date:          dayStart,
		Temperature:   normalized.Temperature,
		TempDisturbed: normalized.TempDisturbed,
		CervicalFluid: normalized.CervicalFluid,
		OPK:           normalized.OPK,
		Flow:          normalized.Flow,
		Intercourse:   normalized.Intercourse,
		Notes:         normalized.Notes,
	}

	if !DayHasData(day) {
		if exists {
			if err := service.days.DeleteByUserAndDayRange(userID, dayStart, dayEnd); err != nil {
				return models.CycleDay{}, false, err
			}
		}
		return models.CycleDay{}, false, nil
	}

	if exists {
		day.ID = existing.ID
		day.CreatedAt = existing.CreatedAt
		if err := service.days.Save(&day); err != nil {
			return models.CycleDay{}, false, err
		}
		return day, true, nil
	}

	if err := service.days.Create(&day); err != nil {
		return models.CycleDay{}, false, err
	}
	return day, true, nil
}

func (service *DayService) DeleteDay(userID uint, date time.Time) error {
	dayStart, dayEnd := DayRange(date, service.location)
	return service.days.DeleteByUserAndDayRange(userID, dayStart, dayEnd)
}
