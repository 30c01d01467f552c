package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"scoreclock/pkg/protocol"
)

// SessionRecord is the single persisted row per session: the state as a JSON
// blob keyed by the opaque session id.
type SessionRecord struct {
	SessionID string `gorm:"primaryKey;size:50"`
	State     []byte
	UpdatedAt time.Time
}

func (SessionRecord) TableName() string { return "session_states" }

// GormStore keeps session records in Postgres.
type GormStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// OpenGorm connects, migrates the schema, and returns a ready store.
func OpenGorm(dsn string, logger *zap.Logger) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&SessionRecord{}); err != nil {
		return nil, fmt.Errorf("migrate session_states: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormStore{db: db, log: logger.Named("store")}, nil
}

func (g *GormStore) Load(ctx context.Context, sessionID string) (protocol.GameState, error) {
	var rec SessionRecord
	err := g.db.WithContext(ctx).First(&rec, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return protocol.GameState{}, ErrNotFound
	}
	if err != nil {
		return protocol.GameState{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	var state protocol.GameState
	if err := json.Unmarshal(rec.State, &state); err != nil {
		// An undecodable blob degrades to a zero state for the repair layer
		// instead of refusing to serve the session.
		g.log.Warn("discarding corrupt session record",
			zap.String("session_id", sessionID), zap.Error(err))
		return protocol.GameState{}, nil
	}
	return state, nil
}

func (g *GormStore) Save(ctx context.Context, sessionID string, state protocol.GameState) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sessionID, err)
	}
	rec := SessionRecord{SessionID: sessionID, State: blob, UpdatedAt: time.Now()}
	err = g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}
