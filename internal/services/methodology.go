package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nooch/nooch-backend/internal/data/repos"
	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/apperr"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
	"github.com/nooch/nooch-backend/internal/platform/openai"
)

type AddDocInput struct {
	Title    string
	Category *string
	// Chunks are pre-split passages; splitting belongs to the caller.
	Chunks []string
}

type MethodologyService interface {
	// AddDoc stores the document and its chunks, embedding each chunk so the
	// draft generator can retrieve it. Without an embeddings client the
	// chunks are stored unembedded and skipped at retrieval time.
	AddDoc(ctx context.Context, coachID uuid.UUID, in AddDocInput) (*types.MethodologyDoc, error)
	ListDocs(ctx context.Context, coachID uuid.UUID) ([]*types.MethodologyDoc, error)
}

type methodologyService struct {
	db     *gorm.DB
	log    *logger.Logger
	docs   repos.DocRepo
	chunks repos.ChunkRepo
	ai     openai.Client
}

func NewMethodologyService(db *gorm.DB, log *logger.Logger, docs repos.DocRepo, chunks repos.ChunkRepo, ai openai.Client) MethodologyService {
	return &methodologyService{
		db:     db,
		log:    log.With("service", "MethodologyService"),
		docs:   docs,
		chunks: chunks,
		ai:     ai,
	}
}

func (s *methodologyService) AddDoc(ctx context.Context, coachID uuid.UUID, in AddDocInput) (*types.MethodologyDoc, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.InvalidInput("title required")
	}
	contents := make([]string, 0, len(in.Chunks))
	for _, c := range in.Chunks {
		if t := strings.TrimSpace(c); t != "" {
			contents = append(contents, t)
		}
	}
	if len(contents) == 0 {
		return nil, apperr.InvalidInput("at least one non-empty chunk required")
	}

	var embeddings [][]float32
	if s.ai != nil {
		vecs, err := s.ai.Embed(ctx, contents)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindUpstreamUnavailable, "embed methodology chunks", err)
		}
		embeddings = vecs
	} else {
		s.log.Warn("no embeddings client; storing methodology chunks unembedded", "coach_id", coachID)
	}

	doc := &types.MethodologyDoc{
		ID:       uuid.New(),
		CoachID:  coachID,
		Title:    title,
		Category: in.Category,
	}
	rows := make([]*types.MethodologyChunk, 0, len(contents))
	for i, content := range contents {
		row := &types.MethodologyChunk{
			ID:      uuid.New(),
			DocID:   doc.ID,
			Ordinal: i,
			Content: content,
		}
		if embeddings != nil {
			raw, err := json.Marshal(embeddings[i])
			if err != nil {
				return nil, fmt.Errorf("marshal embedding: %w", err)
			}
			row.Embedding = raw
		}
		rows = append(rows, row)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := s.docs.Create(dbc, []*types.MethodologyDoc{doc}); err != nil {
			return fmt.Errorf("persist doc: %w", err)
		}
		if _, err := s.chunks.Create(dbc, rows); err != nil {
			return fmt.Errorf("persist chunks: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *methodologyService) ListDocs(ctx context.Context, coachID uuid.UUID) ([]*types.MethodologyDoc, error) {
	return s.docs.ListByCoach(dbctx.Context{Ctx: ctx}, coachID)
}
