package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/roller-forecast/internal/forecast"
	"github.com/iwvelando/roller-forecast/internal/projection"
	"github.com/iwvelando/roller-forecast/pkg/constants"
	"github.com/iwvelando/roller-forecast/pkg/format"
	"github.com/iwvelando/roller-forecast/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, results []forecast.Forecast) {
	p := message.NewPrinter(language.English)
	report := BuildReport(results)
	for i, result := range results {
		fmt.Fprintf(w, "--- Results for scenario %s ---\n", result.Name)
		if result.Err != nil {
			fmt.Fprintf(w, "error: %v\n", result.Err)
			if len(results) > 1 {
				fmt.Fprintf(w, "\n")
			}
			continue
		}

		traj := result.Trajectory
		notes := PurchaseNotes(traj)

		fmt.Fprintf(w, "Day   | Balance (%s) | Power | Power (Bonus) | Bonus | Reward/cycle | Notes\n", constants.ResourceLabel)
		fmt.Fprintf(w, "___   | ___________ | _____ | _____________ | _____ | ____________ | _____\n")
		for d := 0; d < traj.Len(); d++ {
			_, _ = p.Fprintf(w, "%d | %s | %s | %s | %s | %s | %s\n",
				d,
				format.Balance(traj.Balance[d]),
				format.Power(traj.UnbonusedProduction[d]),
				format.Power(traj.BonusedProduction[d]),
				format.Percent(traj.BonusFraction[d]),
				format.Reward(traj.RewardRate[d]),
				notes[d],
			)
		}

		s := report.Scenarios[i].Summary
		_, _ = p.Fprintf(w, "Summary: %d days, final balance %s %s, %d of %d upgrades bought",
			s.Days, format.Balance(s.FinalBalance), constants.ResourceLabel, s.UpgradesBought, s.UpgradesBought+s.UpgradesPending)
		if s.LastPurchaseDay >= 0 {
			_, _ = p.Fprintf(w, ", last on day %d", s.LastPurchaseDay)
		}
		fmt.Fprintf(w, "\n")
		if len(results) > 1 {
			fmt.Fprintf(w, "\n")
		}
	}

	for _, c := range report.Crossovers {
		_, _ = p.Fprintf(w, "%s overtakes %s on day %d\n", c.Challenger, c.Leader, c.Day)
	}
}

// PurchaseNotes maps each purchase day of traj to a note describing the
// upgrade bought that day.
func PurchaseNotes(traj *projection.Trajectory) map[int]string {
	if traj == nil {
		return map[int]string{}
	}
	notes := make(map[int]string, len(traj.Purchases))
	for _, purchase := range traj.Purchases {
		notes[purchase.Day] = fmt.Sprintf("bought upgrade %d for %s", purchase.Index+1, format.Balance(purchase.Price))
	}
	return notes
}

// CsvFormat writes one row per day with the balance, power, bonus and reward
// columns of every successful scenario.
func CsvFormat(w io.Writer, results []forecast.Forecast) error {
	writer := csv.NewWriter(w)

	header := []string{"day"}
	days := 0
	var ok []forecast.Forecast
	for _, result := range results {
		if !result.OK() {
			continue
		}
		ok = append(ok, result)
		if result.Trajectory.Len() > days {
			days = result.Trajectory.Len()
		}
		header = append(header,
			fmt.Sprintf("balance (%s)", result.Name),
			fmt.Sprintf("power (%s)", result.Name),
			fmt.Sprintf("bonused power (%s)", result.Name),
			fmt.Sprintf("bonus %% (%s)", result.Name),
			fmt.Sprintf("reward per cycle (%s)", result.Name),
		)
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for d := 0; d < days; d++ {
		row := []string{strconv.Itoa(d)}
		for _, result := range ok {
			point, found := result.Trajectory.Point(d)
			if !found {
				row = append(row, "", "", "", "", "")
				continue
			}
			row = append(row,
				format.Fixed(point.Balance, constants.BalancePrecision),
				strconv.FormatFloat(point.UnbonusedProduction, 'f', -1, 64),
				strconv.FormatFloat(point.BonusedProduction, 'f', -1, 64),
				format.Fixed(mathutil.FractionToPercent(point.BonusFraction), 4),
				format.Fixed(point.RewardRate, constants.RewardPrecision),
			)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// CsvString returns the CSV rendering of results.
func CsvString(results []forecast.Forecast) string {
	var b strings.Builder
	if err := CsvFormat(&b, results); err != nil {
		return ""
	}
	return b.String()
}

// JSONFormat writes the full Report as indented JSON.
func JSONFormat(w io.Writer, results []forecast.Forecast) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildReport(results))
}
