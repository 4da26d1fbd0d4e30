package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/suggest"
)

// SuggestCmd creates the suggest command
func SuggestCmd(app *AppContext) *cobra.Command {
	var (
		minimums       map[string]int
		weekendMinimum int
		templates      []string
		asJSON         bool
	)

	cmd := &cobra.Command{
		Use:   "suggest <week_start_date>",
		Short: "Recommend employees for every shift of the 7 days starting at the given date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &suggest.Requirements{}
			for code, n := range minimums {
				if req.Minimums == nil {
					req.Minimums = make(map[model.ShiftCode]int)
				}
				req.Minimums[model.ShiftCode(strings.ToUpper(code))] = n
			}
			if cmd.Flags().Changed("weekend-min") {
				req.WeekendMinimum = &weekendMinimum
			}
			for _, code := range templates {
				req.Templates = append(req.Templates, model.ShiftCode(strings.ToUpper(code)))
			}

			app.Logger.Debug("suggest command",
				zap.String("week_start", args[0]),
				zap.Int("template_filter", len(req.Templates)))

			set, err := app.Scheduler.GenerateSuggestions(app.Ctx, args[0], nil, req)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(set)
			}

			printSuggestions(cmd.OutOrStdout(), set, app.Scheduler.Catalog().ShortageConfidence)
			return nil
		},
	}

	cmd.Flags().StringToIntVar(&minimums, "min", nil, "Required staff per shift type, e.g. --min MORNING=3,EVENING=1")
	cmd.Flags().IntVar(&weekendMinimum, "weekend-min", 0, "Required staff for every weekend shift")
	cmd.Flags().StringSliceVar(&templates, "templates", nil, "Only suggest these shift types")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the suggestion set as JSON")

	return cmd
}

func printSuggestions(w io.Writer, set *model.SuggestionSet, shortageConfidence float64) {
	fmt.Fprintf(w, "\nSuggestions for the week of %s (%d shortage(s)):\n", set.WeekStart, set.Shortages)

	date := ""
	for _, s := range set.Suggestions {
		if s.Date != date {
			date = s.Date
			fmt.Fprintf(w, "\n%s\n", date)
		}

		names := make([]string, 0, len(s.RecommendedEmployees))
		for _, e := range s.RecommendedEmployees {
			label := e.EmployeeID
			if e.Name != "" {
				label = e.Name
			}
			names = append(names, fmt.Sprintf("%s (%.2f)", label, e.Score))
		}
		if len(names) == 0 {
			names = append(names, colorDim+"nobody"+colorReset)
		}

		fmt.Fprintf(w, "  %-10s need %d  %s%.2f%s  %s\n",
			s.Shift.Code,
			s.RequiredStaff,
			confidenceColor(s.Confidence, shortageConfidence), s.Confidence, colorReset,
			strings.Join(names, ", "))
		for _, issue := range s.Issues {
			fmt.Fprintf(w, "             %s! %s%s\n", colorRed, issue, colorReset)
		}
	}
	fmt.Fprintln(w)
}
