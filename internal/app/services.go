package app

import (
	"gorm.io/gorm"

	"github.com/nooch/nooch-backend/internal/pkg/logger"
	"github.com/nooch/nooch-backend/internal/platform/openai"
	"github.com/nooch/nooch-backend/internal/realtime/bus"
	"github.com/nooch/nooch-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	Client       services.ClientService
	Risk         services.RiskService
	Escrow       services.EscrowService
	Message      services.MessageService
	Checkin      services.CheckinService
	Photo        services.PhotoService
	Notification services.NotificationService
	Methodology  services.MethodologyService

	Notifier  services.Notifier
	Generator services.DraftGenerator
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, b bus.Bus) (Services, error) {
	log.Info("Wiring services...")

	notifier := services.NewNotifier(log, r.Notification, b)

	// Draft generation degrades to the fallback reply when OpenAI is not
	// configured.
	var ai openai.Client
	var generator services.DraftGenerator
	if cfg.OpenAIKey != "" {
		c, err := openai.NewClient(log)
		if err != nil {
			return Services{}, err
		}
		ai = c
		generator = services.NewRAGGenerator(log, ai, r.Chunk)
	} else {
		log.Warn("OPENAI_API_KEY not set; drafts will use the fallback reply")
	}

	auth, err := services.NewAuthService(db, log, r.User, r.ClientProfile)
	if err != nil {
		return Services{}, err
	}

	return Services{
		Auth:         auth,
		Client:       services.NewClientService(db, log, r.ClientProfile),
		Risk:         services.NewRiskService(db, log, r.ClientProfile, r.Checkin, r.Message, r.Photo, notifier),
		Escrow:       services.NewEscrowService(db, log, r.ClientProfile, r.Conversation, r.Message, r.Draft, generator, notifier),
		Message:      services.NewMessageService(db, log, r.ClientProfile, r.Conversation, r.Message, notifier),
		Checkin:      services.NewCheckinService(db, log, r.ClientProfile, r.Checkin),
		Photo:        services.NewPhotoService(db, log, r.ClientProfile, r.Photo),
		Notification: services.NewNotificationService(db, log, r.Notification),
		Methodology:  services.NewMethodologyService(db, log, r.Doc, r.Chunk, ai),
		Notifier:     notifier,
		Generator:    generator,
	}, nil
}
