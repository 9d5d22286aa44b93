package services

import (
	"math"
	"reflect"
	"testing"
	"time"
)

var riskNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }

func weeklySamples(now time.Time, scores []float64, weights []*float64) []CheckinSample {
	out := make([]CheckinSample, len(scores))
	for i := range scores {
		out[i] = CheckinSample{
			WeekStart:       now.AddDate(0, 0, -3-7*i),
			ComplianceScore: scores[i],
		}
		if weights != nil {
			out[i].Weight = weights[i]
		}
	}
	return out
}

func TestComputeRiskEngagedClient(t *testing.T) {
	lastMsg := riskNow.AddDate(0, 0, -1)
	lastPhoto := riskNow.AddDate(0, 0, -2)
	in := RiskInput{
		Checkins:      weeklySamples(riskNow, []float64{8, 8, 8, 8}, []*float64{f64(160), f64(161), f64(162), f64(163)}),
		TargetWeight:  f64(150),
		LastMessageAt: &lastMsg,
		LastPhotoAt:   &lastPhoto,
	}

	got := ComputeRisk(in, riskNow)
	if got.Score != 5 {
		t.Fatalf("score = %d, want 5", got.Score)
	}
	if got.Level != riskLevelOnTrack {
		t.Fatalf("level = %q, want %q", got.Level, riskLevelOnTrack)
	}
	if got.Breakdown == nil {
		t.Fatal("fresh computation must carry a breakdown")
	}
	if got.Breakdown.MissedCheckins != 0 {
		t.Fatalf("missed = %d, want 0", got.Breakdown.MissedCheckins)
	}
	if got.Breakdown.ComplianceTrend != "stable" {
		t.Fatalf("trend = %q, want stable", got.Breakdown.ComplianceTrend)
	}
	if got.Breakdown.WeightTrend != "toward" {
		t.Fatalf("weight trend = %q, want toward", got.Breakdown.WeightTrend)
	}
}

func TestComputeRiskSilentClient(t *testing.T) {
	got := ComputeRisk(RiskInput{}, riskNow)

	// 25 missed + 0 trend + 10 unknown weight + 15 message + 15 photo.
	if got.Score != 65 {
		t.Fatalf("score = %d, want 65", got.Score)
	}
	if got.Level != riskLevelIntervention {
		t.Fatalf("level = %q, want %q", got.Level, riskLevelIntervention)
	}
	if got.Breakdown.MissedCheckins != 4 {
		t.Fatalf("missed = %d, want 4", got.Breakdown.MissedCheckins)
	}
	if got.Breakdown.DaysSinceLastCheckin != daysSentinel || got.Breakdown.DaysSinceLastMessage != daysSentinel || got.Breakdown.DaysSinceLastPhoto != daysSentinel {
		t.Fatalf("sentinel days: %+v", got.Breakdown)
	}
}

func TestComputeRiskWorstCaseCapsAt100(t *testing.T) {
	in := RiskInput{
		Checkins: []CheckinSample{
			// All older than the 4-week window, declining scores, moving away.
			{WeekStart: riskNow.AddDate(0, 0, -30), ComplianceScore: 2, Weight: f64(170)},
			{WeekStart: riskNow.AddDate(0, 0, -37), ComplianceScore: 2, Weight: f64(165)},
			{WeekStart: riskNow.AddDate(0, 0, -44), ComplianceScore: 9, Weight: f64(164)},
			{WeekStart: riskNow.AddDate(0, 0, -51), ComplianceScore: 9, Weight: f64(163)},
		},
		TargetWeight: f64(150),
	}

	got := ComputeRisk(in, riskNow)
	if got.Score != 100 {
		t.Fatalf("score = %d, want 100", got.Score)
	}
	if got.Level != riskLevelImmediate {
		t.Fatalf("level = %q, want %q", got.Level, riskLevelImmediate)
	}
}

func TestComplianceTrend(t *testing.T) {
	cases := []struct {
		name   string
		scores []float64
		want   string
	}{
		{"too few", []float64{9, 9}, "unknown"},
		{"none", nil, "unknown"},
		{"improving", []float64{9, 9, 3, 3}, "improving"},
		{"declining", []float64{3, 3, 9, 9}, "declining"},
		{"stable flat", []float64{7, 7, 7, 7}, "stable"},
		{"stable within band", []float64{7, 7, 6.5, 6.5}, "stable"},
		{"three checkins declining", []float64{4, 4, 6}, "declining"},
		{"three checkins improving", []float64{8, 8, 5}, "improving"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := complianceTrend(tc.scores); got != tc.want {
				t.Fatalf("complianceTrend(%v) = %q, want %q", tc.scores, got, tc.want)
			}
		})
	}
}

func TestWeightTrend(t *testing.T) {
	target := f64(145)
	cases := []struct {
		name   string
		target *float64
		recent *float64
		older  *float64
		want   string
	}{
		{"toward", target, f64(165), f64(166), "toward"},
		{"away", target, f64(167), f64(166), "away"},
		{"stable", target, f64(166.2), f64(166), "stable"},
		{"no target", nil, f64(165), f64(166), "unknown"},
		{"missing recent weight", target, nil, f64(166), "unknown"},
		{"missing older weight", target, f64(165), nil, "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			checkins := []CheckinSample{
				{WeekStart: riskNow.AddDate(0, 0, -3), Weight: tc.recent},
				{WeekStart: riskNow.AddDate(0, 0, -10), Weight: tc.older},
			}
			if got := weightTrend(tc.target, checkins); got != tc.want {
				t.Fatalf("weightTrend = %q, want %q", got, tc.want)
			}
		})
	}

	t.Run("single checkin", func(t *testing.T) {
		checkins := []CheckinSample{{WeekStart: riskNow, Weight: f64(160)}}
		if got := weightTrend(target, checkins); got != "unknown" {
			t.Fatalf("weightTrend = %q, want unknown", got)
		}
	})
}

func TestComputeRiskFactorsSumToScore(t *testing.T) {
	lastMsg := riskNow.AddDate(0, 0, -20)
	inputs := []RiskInput{
		{},
		{Checkins: weeklySamples(riskNow, []float64{8, 8, 8, 8}, nil)},
		{Checkins: weeklySamples(riskNow, []float64{3, 3, 9, 9}, nil), LastMessageAt: &lastMsg},
		{Checkins: weeklySamples(riskNow, []float64{9, 9, 3, 3}, []*float64{f64(160), f64(161), f64(162), f64(163)}), TargetWeight: f64(150)},
	}

	for i, in := range inputs {
		got := ComputeRisk(in, riskNow)
		var sum float64
		for _, f := range got.Factors {
			sum += f.Points
		}
		total := math.Min(sum, 100)
		if got.Score != int(math.Round(total)) {
			t.Fatalf("input %d: score %d does not match factor sum %.2f", i, got.Score, sum)
		}
	}
}

func TestComputeRiskDeterministic(t *testing.T) {
	lastMsg := riskNow.AddDate(0, 0, -9)
	in := RiskInput{
		Checkins:      weeklySamples(riskNow, []float64{6, 7, 8, 5}, []*float64{f64(180), f64(181), nil, f64(183)}),
		TargetWeight:  f64(170),
		LastMessageAt: &lastMsg,
	}

	a := ComputeRisk(in, riskNow)
	b := ComputeRisk(in, riskNow)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same input produced different assessments:\n%+v\n%+v", a, b)
	}
}

func TestComputeRiskInactivityAccrual(t *testing.T) {
	cases := []struct {
		name         string
		daysAgo      int
		wantMsgPts   float64
		wantPhotoPts float64
	}{
		{"fresh", 3, 0, 0},
		{"one week", 8, 7.5, 5},
		{"two weeks", 15, 15, 10},
		{"long gone caps", 60, 15, 15},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			at := riskNow.AddDate(0, 0, -tc.daysAgo)
			got := ComputeRisk(RiskInput{LastMessageAt: &at, LastPhotoAt: &at}, riskNow)

			byName := map[string]float64{}
			for _, f := range got.Factors {
				byName[f.Name] = f.Points
			}
			if byName["message_inactivity"] != tc.wantMsgPts {
				t.Fatalf("message points = %.2f, want %.2f", byName["message_inactivity"], tc.wantMsgPts)
			}
			if byName["photo_inactivity"] != tc.wantPhotoPts {
				t.Fatalf("photo points = %.2f, want %.2f", byName["photo_inactivity"], tc.wantPhotoPts)
			}
		})
	}
}

func TestRiskLevelBands(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{0, riskLevelOnTrack},
		{25, riskLevelOnTrack},
		{26, riskLevelNeedsAttn},
		{50, riskLevelNeedsAttn},
		{51, riskLevelIntervention},
		{75, riskLevelIntervention},
		{76, riskLevelImmediate},
		{100, riskLevelImmediate},
	}
	for _, tc := range cases {
		if got := riskLevel(tc.score); got != tc.want {
			t.Fatalf("riskLevel(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
