package notifier

import (
	"fmt"
	"html"
	"strings"

	"StockScreener/internal/model"
	"StockScreener/internal/recorder"
	"StockScreener/internal/strategy"
)

// MaxListed caps the matches printed in one report; Telegram rejects
// messages over 4096 characters.
const MaxListed = 50

// FormatScanReport formats one screen result into a Telegram message.
func FormatScanReport(res *model.ScreenResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n", html.EscapeString(res.Screen), res.EvaluatedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("符合: %d / %d\n\n", len(res.Matches), res.Total))

	b.WriteString("🔎 <b>條件通過數:</b>\n")
	for _, c := range res.Conditions {
		b.WriteString(fmt.Sprintf("  %s: %d\n", c.Name, c.Passed))
	}

	if len(res.Matches) == 0 {
		b.WriteString("\n今日無符合標的")
		return b.String()
	}

	b.WriteString("\n📈 <b>符合標的:</b>\n")
	for i, m := range res.Matches {
		if i == MaxListed {
			b.WriteString(fmt.Sprintf("  ...另有 %d 檔\n", len(res.Matches)-MaxListed))
			break
		}
		b.WriteString(fmt.Sprintf("  <code>%s</code> %s %.2f\n", html.EscapeString(m.Code), html.EscapeString(m.Name), m.Close))
	}
	return b.String()
}

// FormatScreenList lists the configured screens with their conditions.
func FormatScreenList(screens []*strategy.Screen) string {
	var b strings.Builder
	b.WriteString("📋 <b>選股策略</b>\n")
	for _, s := range screens {
		names := make([]string, 0, len(s.Conditions))
		for _, c := range s.Conditions {
			names = append(names, c.Name())
		}
		b.WriteString(fmt.Sprintf("\n<b>%s</b>\n  %s\n", html.EscapeString(s.Name), strings.Join(names, " + ")))
	}
	return b.String()
}

// FormatHistory formats recent scan runs, newest first.
func FormatHistory(runs []recorder.RunSummary) string {
	if len(runs) == 0 {
		return "尚無掃描紀錄"
	}
	var b strings.Builder
	b.WriteString("🗂 <b>最近掃描</b>\n")
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("  %s %s %d/%d (%s)\n",
			r.Timestamp.Format("01-02 15:04"), html.EscapeString(r.Screen), r.Matched, r.Total, r.TriggerType))
	}
	return b.String()
}
