package services

import (
	"math"
	"sort"
	"strings"
	"time"

	types "github.com/yungbote/quitbridge-backend/internal/domain"
)

const (
	TrendImproving        = "improving"
	TrendWorsening        = "worsening"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

type DailyPoint struct {
	Date       string `json:"date"`
	Cigarettes int    `json:"cigarettes"`
	Cravings   int    `json:"cravings"`
	Mood       string `json:"mood,omitempty"`
}

type RecordStatistics struct {
	TotalRecords           int     `json:"total_records"`
	TotalCigarettes        int     `json:"total_cigarettes"`
	AveragePerDay          float64 `json:"average_per_day"`
	TotalCravings          int     `json:"total_cravings"`
	SmokeFreeDays          int     `json:"smoke_free_days"`
	MostCommonMood         *string `json:"most_common_mood"`
	MostCommonTrigger      *string `json:"most_common_trigger"`
	DaysAnalyzed           int     `json:"days_analyzed"`
	TotalMoneySaved        float64 `json:"total_money_saved"`
	TotalCigarettesAvoided int     `json:"total_cigarettes_avoided"`
}

type StatisticsReport struct {
	Statistics RecordStatistics `json:"statistics"`
	DailyData  []DailyPoint     `json:"daily_data"`
}

type TrendReport struct {
	Trend              string    `json:"trend"`
	ChangePercentage   float64   `json:"change_percentage"`
	WeeklyAverages     []float64 `json:"weekly_averages"`
	TotalWeeksAnalyzed int       `json:"total_weeks_analyzed"`
}

// computeStatistics summarizes records ordered by record_date ascending.
func computeStatistics(records []*types.SmokingRecord, profile *types.UserProfile, days int) StatisticsReport {
	out := StatisticsReport{DailyData: make([]DailyPoint, 0, len(records))}
	out.Statistics.DaysAnalyzed = days
	if profile != nil {
		out.Statistics.TotalMoneySaved = profile.TotalMoneySaved
		out.Statistics.TotalCigarettesAvoided = profile.TotalCigarettesAvoided
	}
	if len(records) == 0 {
		return out
	}

	moods := map[string]int{}
	triggers := map[string]int{}
	st := &out.Statistics
	for _, r := range records {
		st.TotalRecords++
		st.TotalCigarettes += r.CigarettesSmoked
		st.TotalCravings += r.CravingsCount
		if r.CigarettesSmoked == 0 {
			st.SmokeFreeDays++
		}
		if r.Mood != "" {
			moods[r.Mood]++
		}
		for _, t := range strings.Split(r.Triggers, ",") {
			if t = strings.TrimSpace(t); t != "" {
				triggers[t]++
			}
		}
		out.DailyData = append(out.DailyData, DailyPoint{
			Date:       r.RecordDate.Format(time.DateOnly),
			Cigarettes: r.CigarettesSmoked,
			Cravings:   r.CravingsCount,
			Mood:       r.Mood,
		})
	}
	st.AveragePerDay = round(float64(st.TotalCigarettes)/float64(st.TotalRecords), 2)
	st.MostCommonMood = mostCommon(moods)
	st.MostCommonTrigger = mostCommon(triggers)
	return out
}

// computeTrend buckets records (ascending by date) into 7-day windows opened
// by the first record of each window, and compares the first and last
// window averages.
func computeTrend(records []*types.SmokingRecord) TrendReport {
	if len(records) < 2 {
		return TrendReport{Trend: TrendInsufficientData, WeeklyAverages: []float64{}}
	}
	var (
		weeks     []float64
		sum, n    int
		weekStart = records[0].RecordDate
	)
	for _, r := range records {
		if r.RecordDate.Sub(weekStart) >= 7*24*time.Hour {
			weeks = append(weeks, float64(sum)/float64(n))
			sum, n = 0, 0
			weekStart = r.RecordDate
		}
		sum += r.CigarettesSmoked
		n++
	}
	if n > 0 {
		weeks = append(weeks, float64(sum)/float64(n))
	}

	out := TrendReport{Trend: TrendStable, TotalWeeksAnalyzed: len(weeks)}
	if len(weeks) >= 2 {
		first, last := weeks[0], weeks[len(weeks)-1]
		switch {
		case last < first:
			out.Trend = TrendImproving
			out.ChangePercentage = round((first-last)/first*100, 1)
		case last > first:
			out.Trend = TrendWorsening
			if first > 0 {
				out.ChangePercentage = round((last-first)/first*100, 1)
			} else {
				out.ChangePercentage = 100
			}
		}
	}
	out.WeeklyAverages = make([]float64, len(weeks))
	for i, w := range weeks {
		out.WeeklyAverages[i] = round(w, 1)
	}
	return out
}

// mostCommon picks the highest count; ties go to the lexically smallest key
// so results are stable.
func mostCommon(counts map[string]int) *string {
	if len(counts) == 0 {
		return nil
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return &best
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func percentOf(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return round(part/whole*100, 1)
}
