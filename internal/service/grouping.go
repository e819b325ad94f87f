package service

import (
	"fmt"
	"sort"

	"github.com/junyours/occ-admission-sub002/internal/dto"
	"github.com/junyours/occ-admission-sub002/internal/models"
	"github.com/junyours/occ-admission-sub002/pkg/daterange"
	"github.com/junyours/occ-admission-sub002/pkg/paging"
)

// sessionOrder fixes the display order of session buckets within a month.
var sessionOrder = map[models.ExamSession]int{
	models.SessionMorning:   0,
	models.SessionAfternoon: 1,
	models.SessionNone:      2,
}

type monthKey struct {
	year  int
	month int
}

func monthLabel(year, month int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%d", year)
	}
	return fmt.Sprintf("%s %d", monthNames[month-1], year)
}

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// groupSchedulesByYear buckets closed schedules into year and month groups,
// newest year and month first. Schedules inside a month keep the order they
// arrive in.
func groupSchedulesByYear(schedules []models.ExamSchedule) []dto.ScheduleYearGroup {
	buckets := make(map[monthKey][]models.ExamSchedule)
	for _, schedule := range schedules {
		t, err := daterange.Parse(schedule.ExamDate)
		if err != nil {
			continue
		}
		key := monthKey{year: t.Year(), month: int(t.Month())}
		buckets[key] = append(buckets[key], schedule)
	}

	return buildYearGroups(buckets, func(key monthKey, items []models.ExamSchedule) dto.ScheduleMonthGroup {
		return dto.ScheduleMonthGroup{
			Label:     monthLabel(key.year, key.month),
			Year:      key.year,
			Month:     key.month,
			Schedules: items,
		}
	})
}

// groupArchiveByYear buckets archived registrations into year, month and
// session groups and applies the per-session pagination window. Each session
// group carries its own pagination metadata so long sessions page
// independently.
func groupArchiveByYear(registrations []models.ArchivedRegistration, page, perPage int) []dto.ArchiveYearGroup {
	type sessionBucket map[models.ExamSession][]models.ArchivedRegistration
	buckets := make(map[monthKey]sessionBucket)
	for _, reg := range registrations {
		t, err := daterange.Parse(reg.BucketDate())
		if err != nil {
			continue
		}
		key := monthKey{year: t.Year(), month: int(t.Month())}
		if buckets[key] == nil {
			buckets[key] = make(sessionBucket)
		}
		session := reg.BucketSession()
		buckets[key][session] = append(buckets[key][session], reg)
	}

	months := make(map[monthKey]dto.ArchiveMonthGroup, len(buckets))
	for key, sessions := range buckets {
		group := dto.ArchiveMonthGroup{
			Label: monthLabel(key.year, key.month),
			Year:  key.year,
			Month: key.month,
		}
		ordered := make([]models.ExamSession, 0, len(sessions))
		for session := range sessions {
			ordered = append(ordered, session)
		}
		sort.Slice(ordered, func(i, j int) bool {
			return sessionOrder[ordered[i]] < sessionOrder[ordered[j]]
		})
		for _, session := range ordered {
			window, meta := paging.Slice(sessions[session], page, perPage)
			group.Sessions = append(group.Sessions, dto.ArchiveSessionGroup{
				Session:       session,
				Registrations: window,
				Pagination:    meta,
			})
		}
		months[key] = group
	}

	keys := sortedMonthKeysDesc(months)
	years := make([]dto.ArchiveYearGroup, 0)
	for _, key := range keys {
		if len(years) == 0 || years[len(years)-1].Year != key.year {
			years = append(years, dto.ArchiveYearGroup{Year: key.year})
		}
		last := &years[len(years)-1]
		last.Months = append(last.Months, months[key])
	}
	return years
}

// buildYearGroups orders month buckets newest first and folds them into year
// groups.
func buildYearGroups(buckets map[monthKey][]models.ExamSchedule, build func(monthKey, []models.ExamSchedule) dto.ScheduleMonthGroup) []dto.ScheduleYearGroup {
	keys := make([]monthKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year > keys[j].year
		}
		return keys[i].month > keys[j].month
	})

	years := make([]dto.ScheduleYearGroup, 0)
	for _, key := range keys {
		if len(years) == 0 || years[len(years)-1].Year != key.year {
			years = append(years, dto.ScheduleYearGroup{Year: key.year})
		}
		last := &years[len(years)-1]
		last.Months = append(last.Months, build(key, buckets[key]))
	}
	return years
}

func sortedMonthKeysDesc(months map[monthKey]dto.ArchiveMonthGroup) []monthKey {
	keys := make([]monthKey, 0, len(months))
	for key := range months {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year > keys[j].year
		}
		return keys[i].month > keys[j].month
	})
	return keys
}

// scoreRangeLabel normalizes a rule's score band into the "{min}%-{max}%"
// display key used for range grouping. The bounds are order-normalized so a
// swapped pair lands in the same bucket.
func scoreRangeLabel(minScore, maxScore int) string {
	if minScore > maxScore {
		minScore, maxScore = maxScore, minScore
	}
	return fmt.Sprintf("%d%%-%d%%", minScore, maxScore)
}

// groupRulesByType buckets rules per personality type and, inside each type,
// per normalized score range. Types and ranges keep the repository ordering.
func groupRulesByType(rules []models.RecommendationRule) []dto.RuleTypeGroup {
	groups := make([]dto.RuleTypeGroup, 0)
	index := make(map[string]int)
	rangeIndex := make(map[string]map[string]int)

	for _, rule := range rules {
		pos, ok := index[rule.PersonalityType]
		if !ok {
			pos = len(groups)
			index[rule.PersonalityType] = pos
			groups = append(groups, dto.RuleTypeGroup{PersonalityType: rule.PersonalityType})
			rangeIndex[rule.PersonalityType] = make(map[string]int)
		}

		label := scoreRangeLabel(rule.MinScore, rule.MaxScore)
		ranges := rangeIndex[rule.PersonalityType]
		rpos, ok := ranges[label]
		if !ok {
			rpos = len(groups[pos].Ranges)
			ranges[label] = rpos
			groups[pos].Ranges = append(groups[pos].Ranges, dto.RuleRangeGroup{Range: label})
		}
		groups[pos].Ranges[rpos].Rules = append(groups[pos].Ranges[rpos].Rules, rule)
		groups[pos].Total++
	}
	return groups
}
