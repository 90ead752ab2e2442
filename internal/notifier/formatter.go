package notifier

import (
	"fmt"
	"strings"

	"TpexRadar/internal/model"
)

// DefaultTitle is the radar report header.
const DefaultTitle = "TPEx Top5（買超）— 5m×300 趨勢雷達"

var arrows = map[model.Direction]string{
	model.DirectionUp:           "⬆️",
	model.DirectionDown:         "⬇️",
	model.DirectionFlat:         "➖",
	model.DirectionNotAvailable: "❌",
}

func arrow(d model.Direction) string {
	if a, ok := arrows[d]; ok {
		return a
	}
	return "➖"
}

func fmtPrice(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%v", *v)
}

func fmtR2(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}

func fmtStrength(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%+.1f%%", *v*100)
}

// FormatLines renders one plain-text line per instrument for the
// fallback text of the Slack message (and for stdout).
func FormatLines(results []model.InstrumentResult, window int) string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		v := r.Verdict
		lines = append(lines, fmt.Sprintf("%s %s %s / %s %s | 5m: %d/%d | r² %s | Δ%d %s",
			r.Code, r.Name, fmtPrice(v.Last), fmtPrice(v.Mean), arrow(v.Direction),
			v.BarsUsed, window, fmtR2(v.RSquared), window, fmtStrength(v.Strength)))
	}
	return strings.Join(lines, "\n")
}

// BuildBlocks renders the Block Kit layout: a header, a legend, then a
// section/context/divider triple per instrument.
func BuildBlocks(results []model.InstrumentResult, window int, title string) []Block {
	if title == "" {
		title = DefaultTitle
	}
	blocks := []Block{
		{Type: "header", Text: &BlockText{Type: "plain_text", Text: title}},
		{Type: "context", Elements: []BlockText{{
			Type: "mrkdwn",
			Text: fmt.Sprintf("*解讀*：Δ%d 代表 %d 根五分K 的總體趨勢強度；bars/%d 若不足，多半是停牌或資料不足。", window, window, window),
		}}},
		{Type: "divider"},
	}

	for _, r := range results {
		v := r.Verdict
		enough := "⚠️"
		if v.BarsUsed >= window {
			enough = "✅"
		}
		blocks = append(blocks,
			Block{Type: "section", Text: &BlockText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*%s %s*  `%s/%s`  %s", r.Code, r.Name, fmtPrice(v.Last), fmtPrice(v.Mean), arrow(v.Direction)),
			}},
			Block{Type: "context", Elements: []BlockText{{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*5m:* %d/%d %s • *r²:* %s • *Δ%d:* %s",
					v.BarsUsed, window, enough, fmtR2(v.RSquared), window, fmtStrength(v.Strength)),
			}}},
			Block{Type: "divider"},
		)
	}

	if n := len(blocks); n > 0 && blocks[n-1].Type == "divider" {
		blocks = blocks[:n-1]
	}
	return blocks
}
