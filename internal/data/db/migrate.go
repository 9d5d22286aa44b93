package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/nooch/nooch-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// Identity
		&types.User{},
		&types.ClientProfile{},

		// Messaging + escrow review
		&types.Conversation{},
		&types.Message{},
		&types.DraftResponse{},

		// Weekly reporting
		&types.WeeklyCheckin{},
		&types.ProgressPhoto{},

		// Notifications
		&types.Notification{},

		// Coaching methodology retrieval
		&types.MethodologyDoc{},
		&types.MethodologyChunk{},
	)
}

func EnsureEscrowIndexes(db *gorm.DB) error {
	// Pending-queue listing per coach, newest first.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_draft_responses_status_created
		ON draft_responses (status, created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_draft_responses_status_created: %w", err)
	}

	// Conversation history pagination.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_messages_conversation_created
		ON messages (conversation_id, created_at);
	`).Error; err != nil {
		return fmt.Errorf("create idx_messages_conversation_created: %w", err)
	}

	// Unread badge counts.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_notifications_user_read_created
		ON notifications (user_id, read, created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_notifications_user_read_created: %w", err)
	}

	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureEscrowIndexes(s.db); err != nil {
		s.log.Error("Index migration failed", "error", err)
		return err
	}
	return nil
}
