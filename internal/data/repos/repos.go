package repos

import (
	"gorm.io/gorm"

	"github.com/nooch/nooch-backend/internal/data/repos/chat"
	"github.com/nooch/nooch-backend/internal/data/repos/identity"
	"github.com/nooch/nooch-backend/internal/data/repos/knowledge"
	"github.com/nooch/nooch-backend/internal/data/repos/notify"
	"github.com/nooch/nooch-backend/internal/data/repos/reporting"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
)

type UserRepo = identity.UserRepo
type ClientProfileRepo = identity.ClientProfileRepo

type ConversationRepo = chat.ConversationRepo
type MessageRepo = chat.MessageRepo
type DraftRepo = chat.DraftRepo

type CheckinRepo = reporting.CheckinRepo
type PhotoRepo = reporting.PhotoRepo

type NotificationRepo = notify.NotificationRepo

type DocRepo = knowledge.DocRepo
type ChunkRepo = knowledge.ChunkRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo {
	return identity.NewUserRepo(db, log)
}
func NewClientProfileRepo(db *gorm.DB, log *logger.Logger) ClientProfileRepo {
	return identity.NewClientProfileRepo(db, log)
}
func NewConversationRepo(db *gorm.DB, log *logger.Logger) ConversationRepo {
	return chat.NewConversationRepo(db, log)
}
func NewMessageRepo(db *gorm.DB, log *logger.Logger) MessageRepo {
	return chat.NewMessageRepo(db, log)
}
func NewDraftRepo(db *gorm.DB, log *logger.Logger) DraftRepo {
	return chat.NewDraftRepo(db, log)
}
func NewCheckinRepo(db *gorm.DB, log *logger.Logger) CheckinRepo {
	return reporting.NewCheckinRepo(db, log)
}
func NewPhotoRepo(db *gorm.DB, log *logger.Logger) PhotoRepo {
	return reporting.NewPhotoRepo(db, log)
}
func NewNotificationRepo(db *gorm.DB, log *logger.Logger) NotificationRepo {
	return notify.NewNotificationRepo(db, log)
}
func NewDocRepo(db *gorm.DB, log *logger.Logger) DocRepo {
	return knowledge.NewDocRepo(db, log)
}
func NewChunkRepo(db *gorm.DB, log *logger.Logger) ChunkRepo {
	return knowledge.NewChunkRepo(db, log)
}
