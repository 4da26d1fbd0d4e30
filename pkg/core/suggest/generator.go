package suggest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/shift-rules/pkg/core/catalog"
	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/repository"
	"github.com/jakechorley/shift-rules/pkg/core/shiftcalc"
	"github.com/jakechorley/shift-rules/pkg/core/stats"
)

// Requirements overrides the catalog's staffing for one suggestion pass
type Requirements struct {
	// Minimums replaces the weekday minimum per shift type
	Minimums map[model.ShiftCode]int
	// WeekendMinimum replaces the weekend minimum when set
	WeekendMinimum *int
	// Templates restricts the pass to these shift types; empty means every work template
	Templates []model.ShiftCode
}

func (req *Requirements) required(c *catalog.Catalog, code model.ShiftCode, date time.Time) int {
	if shiftcalc.IsWeekend(date) {
		if req != nil && req.WeekendMinimum != nil {
			return *req.WeekendMinimum
		}
		return c.Staffing.WeekendMinimum
	}
	if req != nil {
		if n, ok := req.Minimums[code]; ok {
			return n
		}
	}
	return c.MinimumStaffing(code, date)
}

func (req *Requirements) templates(c *catalog.Catalog) []model.ShiftTemplate {
	all := c.WorkTemplates()
	if req == nil || len(req.Templates) == 0 {
		return all
	}

	wanted := make(map[model.ShiftCode]bool, len(req.Templates))
	for _, code := range req.Templates {
		wanted[code] = true
	}
	var out []model.ShiftTemplate
	for _, t := range all {
		if wanted[t.Code] {
			out = append(out, t)
		}
	}
	return out
}

// Generator builds staffing suggestions for a week
type Generator struct {
	catalog *catalog.Catalog
	scorer  *Scorer
}

// NewGenerator creates a generator over the catalog's templates and staffing
func NewGenerator(c *catalog.Catalog, scorer *Scorer) *Generator {
	if scorer == nil {
		scorer = NewScorer(nil)
	}
	return &Generator{catalog: c, scorer: scorer}
}

// Generate suggests staff for every date of the ISO week containing weekStart
// and every work template. It never writes to r; callers pass a snapshot so
// the whole pass sees one consistent state.
// Each shift is ranked on its own: the result is a set of per-shift
// recommendations, not a joint assignment, so one employee may be
// recommended for overlapping templates on the same date.
func (g *Generator) Generate(ctx context.Context, r repository.Reader, weekStart time.Time, roster []model.Employee, req *Requirements) (*model.SuggestionSet, error) {
	dates := shiftcalc.WeekDates(weekStart)
	templates := req.templates(g.catalog)

	var active []model.Employee
	for _, e := range roster {
		if e.IsActive() {
			active = append(active, e)
		}
	}
	rosterAverage := stats.RosterAverageWeeklyHours(r, active, dates[0])

	perDate := make([][]model.Suggestion, len(dates))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, date := range dates {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			suggestions := make([]model.Suggestion, 0, len(templates))
			for _, template := range templates {
				required := req.required(g.catalog, template.Code, date)
				suggestions = append(suggestions, g.suggest(r, active, date, template, required, rosterAverage))
			}
			perDate[i] = suggestions
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to generate suggestions: %w", err)
	}

	set := &model.SuggestionSet{
		WeekStart:   shiftcalc.FormatDate(dates[0]),
		Suggestions: make([]model.Suggestion, 0, len(dates)*len(templates)),
	}
	for _, suggestions := range perDate {
		for _, s := range suggestions {
			if s.HasShortage() {
				set.Shortages++
			}
			set.Suggestions = append(set.Suggestions, s)
		}
	}
	return set, nil
}

func (g *Generator) suggest(r repository.Reader, roster []model.Employee, date time.Time, template model.ShiftTemplate, required int, rosterAverage float64) model.Suggestion {
	ranked := g.Rank(r, roster, date, template, rosterAverage)

	selected := ranked
	if len(selected) > required {
		selected = selected[:required]
	}

	suggestion := model.Suggestion{
		Date:                 shiftcalc.FormatDate(date),
		Shift:                template,
		RequiredStaff:        required,
		RecommendedEmployees: selected,
	}

	if required == 0 {
		suggestion.Confidence = 1
		suggestion.Reasoning = "no staff required"
		return suggestion
	}

	usable := 0
	total := 0.0
	for _, e := range selected {
		total += e.Score
		if e.Score > g.catalog.UsabilityFloor {
			usable++
		}
	}

	if usable < required {
		suggestion.Confidence = g.catalog.ShortageConfidence
		suggestion.Reasoning = fmt.Sprintf("%d of %d available employees ranked; not enough are suitable", len(selected), len(ranked))
		suggestion.Issues = []string{
			fmt.Sprintf("only %d of %d required employees score above %.2f for %s on %s",
				usable, required, g.catalog.UsabilityFloor, template.Code, suggestion.Date),
		}
		return suggestion
	}

	suggestion.Confidence = total / float64(len(selected))
	suggestion.Reasoning = fmt.Sprintf("top %d of %d available employees by suitability", len(selected), len(ranked))
	return suggestion
}

// Rank scores every roster employee for the shift and returns those with a
// positive score, best first. Ties are broken by employee id.
func (g *Generator) Rank(r repository.Reader, roster []model.Employee, date time.Time, template model.ShiftTemplate, rosterAverage float64) []model.RankedEmployee {
	ranked := make([]model.RankedEmployee, 0, len(roster))
	for _, e := range roster {
		score := g.scorer.Score(r, e, date, template, rosterAverage)
		if score <= 0 {
			continue
		}
		ranked = append(ranked, model.RankedEmployee{EmployeeID: e.ID, Name: e.Name, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].EmployeeID < ranked[j].EmployeeID
	})
	return ranked
}
