package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/nooch/nooch-backend/internal/data/repos"
	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
	"github.com/nooch/nooch-backend/internal/platform/openai"
)

const draftSystemPrompt = `You are drafting a reply on behalf of a nutrition coach to one of their clients.
Ground your answer in the coach's methodology excerpts when they are provided; do not invent policies the coach has not written down.
Be warm, specific, and brief. Address the client's question directly.
The coach reviews every draft before the client sees it, so write in the coach's voice, first person.`

type SourceDoc struct {
	ChunkID uuid.UUID `json:"chunk_id"`
	Excerpt string    `json:"excerpt"`
	Score   float64   `json:"score"`
}

type DraftResult struct {
	Content    string
	SourceDocs []SourceDoc
	Confidence float64
}

// DraftGenerator produces an AI draft for a client message. Implementations
// must return an error rather than a partial draft; the caller owns fallback.
type DraftGenerator interface {
	Generate(ctx context.Context, coachID uuid.UUID, question string, history []*types.Message) (*DraftResult, error)
}

type ragGenerator struct {
	log    *logger.Logger
	ai     openai.Client
	chunks repos.ChunkRepo

	topK          int
	minSimilarity float64
}

func NewRAGGenerator(log *logger.Logger, ai openai.Client, chunks repos.ChunkRepo) DraftGenerator {
	return &ragGenerator{
		log:           log.With("service", "RAGGenerator"),
		ai:            ai,
		chunks:        chunks,
		topK:          4,
		minSimilarity: 0.2,
	}
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// draftConfidence grows with retrieval support and never reaches certainty.
// No retrieved context at all pins it low.
func draftConfidence(docs int) float64 {
	if docs == 0 {
		return 0.3
	}
	return math.Min(0.5+0.1*float64(docs), 0.9)
}

func (g *ragGenerator) retrieve(ctx context.Context, coachID uuid.UUID, question string) ([]SourceDoc, error) {
	rows, err := g.chunks.ListByCoach(dbctx.Context{Ctx: ctx}, coachID)
	if err != nil {
		return nil, fmt.Errorf("list methodology chunks: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	vecs, err := g.ai.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	qvec := vecs[0]

	scored := make([]SourceDoc, 0, len(rows))
	for _, row := range rows {
		var emb []float32
		if len(row.Embedding) == 0 {
			continue
		}
		if err := json.Unmarshal(row.Embedding, &emb); err != nil {
			g.log.Warn("bad chunk embedding", "chunk_id", row.ID, "error", err)
			continue
		}
		score := cosineSimilarity(qvec, emb)
		if score < g.minSimilarity {
			continue
		}
		scored = append(scored, SourceDoc{
			ChunkID: row.ID,
			Excerpt: row.Content,
			Score:   score,
		})
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > g.topK {
		scored = scored[:g.topK]
	}
	return scored, nil
}

func (g *ragGenerator) Generate(ctx context.Context, coachID uuid.UUID, question string, history []*types.Message) (*DraftResult, error) {
	docs, err := g.retrieve(ctx, coachID, question)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	if len(docs) > 0 {
		b.WriteString("Coach methodology excerpts:\n")
		for i, d := range docs {
			fmt.Fprintf(&b, "[%d] %s\n", i+1, d.Excerpt)
		}
		b.WriteString("\n")
	}
	if len(history) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, m := range history {
			role := "Client"
			if m.Type == types.MessageTypeAI || m.Type == types.MessageTypeCoach {
				role = "Coach"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, m.Content)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Client's message: %s", question)

	content, err := g.ai.GenerateText(ctx, draftSystemPrompt, b.String())
	if err != nil {
		return nil, fmt.Errorf("generate draft: %w", err)
	}

	return &DraftResult{
		Content:    strings.TrimSpace(content),
		SourceDocs: docs,
		Confidence: draftConfidence(len(docs)),
	}, nil
}
