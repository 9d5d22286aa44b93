package app

import (
	"gorm.io/gorm"

	"github.com/nooch/nooch-backend/internal/data/repos"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
)

type Repos struct {
	User          repos.UserRepo
	ClientProfile repos.ClientProfileRepo
	Conversation  repos.ConversationRepo
	Message       repos.MessageRepo
	Draft         repos.DraftRepo
	Checkin       repos.CheckinRepo
	Photo         repos.PhotoRepo
	Notification  repos.NotificationRepo
	Doc           repos.DocRepo
	Chunk         repos.ChunkRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:          repos.NewUserRepo(db, log),
		ClientProfile: repos.NewClientProfileRepo(db, log),
		Conversation:  repos.NewConversationRepo(db, log),
		Message:       repos.NewMessageRepo(db, log),
		Draft:         repos.NewDraftRepo(db, log),
		Checkin:       repos.NewCheckinRepo(db, log),
		Photo:         repos.NewPhotoRepo(db, log),
		Notification:  repos.NewNotificationRepo(db, log),
		Doc:           repos.NewDocRepo(db, log),
		Chunk:         repos.NewChunkRepo(db, log),
	}
}
