package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"

	"github.com/nooch/nooch-backend/internal/data/repos"
	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/apperr"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
)

// daysSentinel stands in for "never" when a client has no activity of a kind.
const daysSentinel = 999

const (
	riskLevelOnTrack      = "On Track"
	riskLevelNeedsAttn    = "Needs Attention"
	riskLevelIntervention = "Intervention Recommended"
	riskLevelImmediate    = "Immediate Outreach Needed"
)

type CheckinSample struct {
	WeekStart       time.Time
	ComplianceScore float64
	Weight          *float64
}

// RiskInput is everything the scoring function looks at. Checkins must be
// ordered newest week first.
type RiskInput struct {
	Checkins      []CheckinSample
	TargetWeight  *float64
	LastMessageAt *time.Time
	LastPhotoAt   *time.Time
}

type RiskFactor struct {
	Name   string  `json:"name"`
	Detail string  `json:"detail"`
	Points float64 `json:"points"`
}

// RiskBreakdown carries the raw signals behind a score. Only a fresh
// computation has them; assessments served from the stored score leave the
// breakdown nil rather than report zeroes that read as real values.
type RiskBreakdown struct {
	MissedCheckins       int     `json:"missed_checkins"`
	ComplianceTrend      string  `json:"compliance_trend"`
	AvgCompliance        float64 `json:"avg_compliance"`
	WeightTrend          string  `json:"weight_trend"`
	DaysSinceLastCheckin int     `json:"days_since_last_checkin"`
	DaysSinceLastMessage int     `json:"days_since_last_message"`
	DaysSinceLastPhoto   int     `json:"days_since_last_photo"`
}

type RiskAssessment struct {
	Score     int            `json:"score"`
	Level     string         `json:"level"`
	Factors   []RiskFactor   `json:"factors"`
	Breakdown *RiskBreakdown `json:"breakdown,omitempty"`
}

func riskLevel(score int) string {
	switch {
	case score <= 25:
		return riskLevelOnTrack
	case score <= 50:
		return riskLevelNeedsAttn
	case score <= 75:
		return riskLevelIntervention
	default:
		return riskLevelImmediate
	}
}

func daysSince(at *time.Time, now time.Time) int {
	if at == nil {
		return daysSentinel
	}
	d := now.Sub(*at).Hours() / 24
	if d < 0 {
		return 0
	}
	return int(math.Floor(d))
}

// complianceTrend needs at least three check-ins to say anything. It compares
// the mean of the two newest scores against the mean of the next two; a gap
// wider than one point either way moves the label off "stable".
func complianceTrend(scores []float64) string {
	if len(scores) < 3 {
		return "unknown"
	}
	recent := (scores[0] + scores[1]) / 2

	olderN := len(scores) - 2
	if olderN > 2 {
		olderN = 2
	}
	var olderSum float64
	for i := 2; i < 2+olderN; i++ {
		olderSum += scores[i]
	}
	older := olderSum / float64(olderN)

	switch {
	case recent < older-1:
		return "declining"
	case recent > older+1:
		return "improving"
	default:
		return "stable"
	}
}

// weightTrend compares distance to target across the two most recent weighed
// check-ins. Within half a unit either way counts as holding steady.
func weightTrend(target *float64, checkins []CheckinSample) string {
	if target == nil || len(checkins) < 2 {
		return "unknown"
	}
	recent := checkins[0].Weight
	older := checkins[1].Weight
	if recent == nil || older == nil {
		return "unknown"
	}
	distRecent := math.Abs(*target - *recent)
	distOlder := math.Abs(*target - *older)
	switch {
	case distRecent > distOlder+0.5:
		return "away"
	case distRecent < distOlder-0.5:
		return "toward"
	default:
		return "stable"
	}
}

// ComputeRisk scores a client 0-100 from their recent engagement. It is pure:
// the same input and clock always produce the same assessment.
func ComputeRisk(in RiskInput, now time.Time) RiskAssessment {
	recentCount := 0
	for _, c := range in.Checkins {
		if !c.WeekStart.Before(now.AddDate(0, 0, -28)) {
			recentCount++
		}
	}
	missed := 4 - recentCount
	if missed < 0 {
		missed = 0
	}

	var scores []float64
	for i, c := range in.Checkins {
		if i >= 4 {
			break
		}
		scores = append(scores, c.ComplianceScore)
	}

	trend := complianceTrend(scores)

	avg := 0.0
	if len(in.Checkins) >= 3 {
		var sum float64
		for _, s := range scores {
			sum += s
		}
		avg = sum / float64(len(scores))
	}

	wTrend := weightTrend(in.TargetWeight, in.Checkins)

	var lastCheckinAt *time.Time
	if len(in.Checkins) > 0 {
		t := in.Checkins[0].WeekStart
		lastCheckinAt = &t
	}
	dCheckin := daysSince(lastCheckinAt, now)
	dMessage := daysSince(in.LastMessageAt, now)
	dPhoto := daysSince(in.LastPhotoAt, now)

	missedPts := math.Min(float64(missed)*6.25, 25)

	var trendPts float64
	switch {
	case trend == "declining":
		trendPts = 25
	case trend == "stable" && avg < 5:
		trendPts = 15
	case trend == "stable":
		trendPts = 5
	default:
		trendPts = 0
	}

	var weightPts float64
	switch wTrend {
	case "away":
		weightPts = 20
	case "unknown":
		weightPts = 10
	case "stable":
		weightPts = 5
	default:
		weightPts = 0
	}

	messagePts := math.Min(math.Floor(float64(dMessage)/7)*7.5, 15)
	photoPts := math.Min(math.Floor(float64(dPhoto)/7)*5, 15)

	total := math.Min(missedPts+trendPts+weightPts+messagePts+photoPts, 100)
	score := int(math.Round(total))

	factors := []RiskFactor{
		{Name: "missed_checkins", Detail: fmt.Sprintf("%d of last 4 weeks missed", missed), Points: missedPts},
		{Name: "compliance_trend", Detail: trend, Points: trendPts},
		{Name: "weight_progress", Detail: wTrend, Points: weightPts},
		{Name: "message_inactivity", Detail: fmt.Sprintf("%d days since last message", dMessage), Points: messagePts},
		{Name: "photo_inactivity", Detail: fmt.Sprintf("%d days since last photo", dPhoto), Points: photoPts},
	}

	return RiskAssessment{
		Score:   score,
		Level:   riskLevel(score),
		Factors: factors,
		Breakdown: &RiskBreakdown{
			MissedCheckins:       missed,
			ComplianceTrend:      trend,
			AvgCompliance:        avg,
			WeightTrend:          wTrend,
			DaysSinceLastCheckin: dCheckin,
			DaysSinceLastMessage: dMessage,
			DaysSinceLastPhoto:   dPhoto,
		},
	}
}

// =========================
// Risk service
// =========================

type RefreshFailure struct {
	ClientID uuid.UUID `json:"client_id"`
	Error    string    `json:"error"`
}

type RefreshSummary struct {
	Succeeded int              `json:"succeeded"`
	Failed    []RefreshFailure `json:"failed"`
}

type RiskService interface {
	// AssessClient recomputes and persists the client's risk. The coach must
	// own the client.
	AssessClient(ctx context.Context, coachID, clientID uuid.UUID) (*RiskAssessment, error)
	GetClientRisk(ctx context.Context, coachID, clientID uuid.UUID) (*RiskAssessment, error)
	// RefreshAllClients recomputes every client of the coach. Failures are
	// collected per client; one bad row does not stop the rest.
	RefreshAllClients(ctx context.Context, coachID uuid.UUID) (*RefreshSummary, error)
}

type riskService struct {
	db       *gorm.DB
	log      *logger.Logger
	profiles repos.ClientProfileRepo
	checkins repos.CheckinRepo
	messages repos.MessageRepo
	photos   repos.PhotoRepo
	notifier Notifier

	maxParallel int64
}

func NewRiskService(
	db *gorm.DB,
	log *logger.Logger,
	profiles repos.ClientProfileRepo,
	checkins repos.CheckinRepo,
	messages repos.MessageRepo,
	photos repos.PhotoRepo,
	notifier Notifier,
) RiskService {
	return &riskService{
		db:          db,
		log:         log.With("service", "RiskService"),
		profiles:    profiles,
		checkins:    checkins,
		messages:    messages,
		photos:      photos,
		notifier:    notifier,
		maxParallel: 8,
	}
}

func (s *riskService) ownedProfile(dbc dbctx.Context, coachID, clientID uuid.UUID) (*types.ClientProfile, error) {
	profile, err := s.profiles.GetByID(dbc, clientID)
	if err != nil {
		return nil, fmt.Errorf("load client profile: %w", err)
	}
	if profile == nil || profile.CoachID != coachID {
		return nil, apperr.NotFound("client not found")
	}
	return profile, nil
}

func (s *riskService) assemble(dbc dbctx.Context, profile *types.ClientProfile) (RiskInput, error) {
	rows, err := s.checkins.ListRecentByClient(dbc, profile.ID, 8)
	if err != nil {
		return RiskInput{}, fmt.Errorf("list checkins: %w", err)
	}
	samples := make([]CheckinSample, 0, len(rows))
	for _, r := range rows {
		samples = append(samples, CheckinSample{
			WeekStart:       r.WeekStartDate,
			ComplianceScore: r.ComplianceScore,
			Weight:          r.CurrentWeight,
		})
	}

	lastMsg, err := s.messages.LatestInboundAt(dbc, profile.ID)
	if err != nil {
		return RiskInput{}, fmt.Errorf("latest inbound message: %w", err)
	}

	var lastPhoto *time.Time
	photo, err := s.photos.LatestByClient(dbc, profile.ID)
	if err != nil {
		return RiskInput{}, fmt.Errorf("latest photo: %w", err)
	}
	if photo != nil {
		t := photo.TakenAt
		lastPhoto = &t
	}

	return RiskInput{
		Checkins:      samples,
		TargetWeight:  profile.TargetWeight,
		LastMessageAt: lastMsg,
		LastPhotoAt:   lastPhoto,
	}, nil
}

func (s *riskService) assessAndPersist(ctx context.Context, profile *types.ClientProfile, now time.Time) (*RiskAssessment, error) {
	var assessment RiskAssessment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		input, err := s.assemble(dbc, profile)
		if err != nil {
			return err
		}
		assessment = ComputeRisk(input, now)

		raw, err := json.Marshal(assessment.Factors)
		if err != nil {
			return fmt.Errorf("marshal risk factors: %w", err)
		}
		if err := s.profiles.UpdateRisk(dbc, profile.ID, assessment.Score, raw, now); err != nil {
			return fmt.Errorf("persist risk: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Alert the coach once when a client enters the top band.
	if s.notifier != nil && assessment.Level == riskLevelImmediate {
		prev := profile.RiskScore
		if prev == nil || riskLevel(*prev) != riskLevelImmediate {
			s.notifier.RiskAlert(profile.CoachID, profile.ID, assessment.Score, assessment.Level)
		}
	}
	return &assessment, nil
}

func (s *riskService) AssessClient(ctx context.Context, coachID, clientID uuid.UUID) (*RiskAssessment, error) {
	profile, err := s.ownedProfile(dbctx.Context{Ctx: ctx}, coachID, clientID)
	if err != nil {
		return nil, err
	}
	return s.assessAndPersist(ctx, profile, time.Now().UTC())
}

func (s *riskService) GetClientRisk(ctx context.Context, coachID, clientID uuid.UUID) (*RiskAssessment, error) {
	dbc := dbctx.Context{Ctx: ctx}
	profile, err := s.ownedProfile(dbc, coachID, clientID)
	if err != nil {
		return nil, err
	}
	// Compute fresh when never scored.
	if profile.RiskScore == nil {
		return s.assessAndPersist(ctx, profile, time.Now().UTC())
	}

	// Served from the stored score; no breakdown without a recompute.
	assessment := RiskAssessment{
		Score: *profile.RiskScore,
		Level: riskLevel(*profile.RiskScore),
	}
	if len(profile.RiskFactors) > 0 {
		if err := json.Unmarshal(profile.RiskFactors, &assessment.Factors); err != nil {
			s.log.Warn("bad stored risk factors", "client_id", profile.ID, "error", err)
		}
	}
	return &assessment, nil
}

func (s *riskService) RefreshAllClients(ctx context.Context, coachID uuid.UUID) (*RefreshSummary, error) {
	clients, err := s.profiles.ListByCoach(dbctx.Context{Ctx: ctx}, coachID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	now := time.Now().UTC()
	sem := semaphore.NewWeighted(s.maxParallel)

	var (
		mu        sync.Mutex
		succeeded int
		failed    []RefreshFailure
		wg        sync.WaitGroup
	)

	for _, profile := range clients {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		wg.Add(1)
		go func(p *types.ClientProfile) {
			defer wg.Done()
			defer sem.Release(1)

			_, err := s.assessAndPersist(ctx, p, now)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.Error("risk refresh failed", "client_id", p.ID, "error", err)
				failed = append(failed, RefreshFailure{ClientID: p.ID, Error: err.Error()})
				return
			}
			succeeded++
		}(profile)
	}
	wg.Wait()

	return &RefreshSummary{Succeeded: succeeded, Failed: failed}, nil
}
