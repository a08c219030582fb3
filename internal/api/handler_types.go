package api

import (
	"time"

	"github.com/terraincognita07/ovella/internal/db"
	"github.com/terraincognita07/ovella/internal/models"
	"github.com/terraincognita07/ovella/internal/services"
	"gorm.io/gorm"
)

const (
	authCookieName = "ovella_token"
	contextUserKey = "current_user"
)

const (
	defaultAuthTokenTTL  = 7 * 24 * time.Hour
	rememberAuthTokenTTL = 30 * 24 * time.Hour
)

const (
	recoveryAttemptLimit  = 5
	recoveryAttemptWindow = 15 * time.Minute
)

type Handler struct {
	db              *gorm.DB
	repos           *db.Repositories
	secretKey       []byte
	location        *time.Location
	cookieSecure    bool
	lutealDefault   int
	authService     *services.AuthService
	cycleService    *services.CycleService
	dayService      *services.DayService
	importService   *services.ImportService
	exportService   *services.ExportService
	recoveryLimiter *attemptLimiter
}

func NewHandler(database *gorm.DB, secretKey string, location *time.Location, cookieSecure bool, lutealDefault int) *Handler {
	if location == nil {
		location = time.UTC
	}
	if lutealDefault < models.MinLutealPhaseDays || lutealDefault > models.MaxLutealPhaseDays {
		lutealDefault = models.DefaultLutealPhaseDays
	}

	repos := db.NewRepositories(database)
	return &Handler{
		db:              database,
		repos:           repos,
		secretKey:       []byte(secretKey),
		location:        location,
		cookieSecure:    cookieSecure,
		lutealDefault:   lutealDefault,
		authService:     services.NewAuthService(repos.Users),
		cycleService:    services.NewCycleService(repos.Cycles, repos.CycleDays, location),
		dayService:      services.NewDayService(repos.Cycles, repos.CycleDays, location),
		importService:   services.NewImportService(repos.Cycles, repos.CycleDays, location),
		exportService:   services.NewExportService(repos.CycleDays, repos.Cycles, location),
		recoveryLimiter: newAttemptLimiter(),
	}
}
