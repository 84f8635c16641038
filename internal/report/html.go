package report

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/searchbench/internal/history"
	"github.com/sells-group/searchbench/internal/model"
)

var titleCaser = cases.Title(language.English)

type summaryRow struct {
	Name         string
	Winner       bool
	Accuracy     string
	AvgLatency   string
	EvidenceCell string
	Cost         string
	Errors       int
}

type trendRow struct {
	Name      string
	Sparkline template.HTML
	Score     string
}

type answerRow struct {
	Provider     string
	Verdict      string
	VerdictClass string
	Answer       string
}

type queryCard struct {
	ID       string
	Category string
	Text     string
	Expected string
	Evidence string
	Answers  []answerRow
}

type configItem struct {
	Name     string
	Endpoint string
	Timeout  string
}

type reportView struct {
	Date          string
	QuerySet      string
	QueryCount    int
	ProviderCount int
	ShowEvidence  bool
	SummaryRows   []summaryRow
	TrendRows     []trendRow
	Methodology   string
	ConfigItems   []configItem
	QueryCards    []queryCard
}

// RenderHTML renders the full report page.
func RenderHTML(graded model.GradedRun, querySet, judgeModel string, summaries []ProviderSummary, historyRuns []history.RunEntry, evidenceMode string) (string, error) {
	run := graded.Run
	winner := ""
	if len(summaries) > 0 {
		winner = summaries[0].Name
	}

	showEvidence := false
	for _, s := range summaries {
		if s.EvidencePassRate != nil {
			showEvidence = true
			break
		}
	}

	view := reportView{
		Date:          time.Now().UTC().Format("2006-01-02"),
		QuerySet:      querySet,
		QueryCount:    run.QueryCount,
		ProviderCount: len(run.Providers),
		ShowEvidence:  showEvidence,
	}

	for _, s := range summaries {
		row := summaryRow{
			Name:       titleCaser.String(s.Name),
			Winner:     s.Name == winner,
			Accuracy:   formatPct(s.Accuracy),
			AvgLatency: formatLatency(s.AvgLatencyMS),
			Cost:       formatCost(s.TotalCostUSD),
			Errors:     s.Errors,
		}
		if showEvidence {
			row.EvidenceCell = formatPctOrDash(s.EvidencePassRate)
		}
		view.SummaryRows = append(view.SummaryRows, row)

		view.TrendRows = append(view.TrendRows, trendRow{
			Name:      titleCaser.String(s.Name),
			Sparkline: sparkline(historyValues(historyRuns, s.Name)),
			Score:     formatPct(s.Accuracy),
		})

		timeout := "default"
		if s.TimeoutUsed != nil {
			timeout = fmt.Sprintf("%ds", *s.TimeoutUsed)
		}
		endpoint := s.Endpoint
		if endpoint == "" {
			endpoint = "unknown"
		}
		view.ConfigItems = append(view.ConfigItems, configItem{
			Name:     titleCaser.String(s.Name),
			Endpoint: endpoint,
			Timeout:  timeout,
		})
	}

	hasEvidence := false
	for _, item := range graded.Queries {
		card := queryCard{
			ID:       item.Query.ID,
			Category: item.Query.Category,
			Text:     item.Query.Text,
			Expected: "Expected: " + expectedText(item.Query.Expected),
			Evidence: formatEvidence(item.Query.Evidence),
		}
		if item.Query.Evidence != nil {
			hasEvidence = true
		}
		for _, name := range run.Providers {
			verdict := "unknown"
			if judgment, ok := item.Judgments[name]; ok {
				verdict = string(judgment.Label)
			}
			answer := ""
			if response, ok := item.Responses[name]; ok {
				answer = response.Answer
			}
			card.Answers = append(card.Answers, answerRow{
				Provider:     titleCaser.String(name),
				Verdict:      strings.ToUpper(verdict),
				VerdictClass: "verdict-" + verdict,
				Answer:       truncate(answer, 220),
			})
		}
		view.QueryCards = append(view.QueryCards, card)
	}

	view.Methodology = fmt.Sprintf(
		"This benchmark ran %d curated questions across %d providers. "+
			"Answers were graded by %s using binary correct/incorrect scoring with semantic equivalence. "+
			"Latency is measured from request initiation to response completion. Costs are calculated using published "+
			"pricing as of the report date.",
		run.QueryCount, len(run.Providers), judgeModel)
	if hasEvidence && evidenceMode != "off" {
		view.Methodology += fmt.Sprintf(" Evidence mode: %s.", evidenceMode)
	}

	var sb strings.Builder
	if err := reportTemplate.Execute(&sb, view); err != nil {
		return "", eris.Wrap(err, "report: render html")
	}
	return sb.String(), nil
}

func expectedText(expected []string) string {
	if len(expected) == 0 {
		return "None"
	}
	return strings.Join(expected, "; ")
}

func formatEvidence(evidence *model.EvidenceRequirement) string {
	if evidence == nil {
		return ""
	}
	var parts []string
	if evidence.MinCitations > 0 {
		parts = append(parts, fmt.Sprintf("min %d citations", evidence.MinCitations))
	}
	if len(evidence.RequiredDomains) > 0 {
		parts = append(parts, "domains: "+strings.Join(evidence.RequiredDomains, ", "))
	}
	if len(evidence.RequiredSources) > 0 {
		parts = append(parts, "sources: "+strings.Join(evidence.RequiredSources, ", "))
	}
	if len(parts) == 0 {
		return ""
	}
	return "Evidence: " + strings.Join(parts, "; ")
}

func formatPct(value float64) string {
	return fmt.Sprintf("%.0f%%", value*100)
}

func formatPctOrDash(value *float64) string {
	if value == nil {
		return "-"
	}
	return formatPct(*value)
}

func formatLatency(ms *int) string {
	if ms == nil {
		return "-"
	}
	return fmt.Sprintf("%.1fs", float64(*ms)/1000)
}

func formatCost(value float64) string {
	return fmt.Sprintf("$%.2f", value)
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return strings.TrimRight(text[:limit-3], " ") + "..."
}

func historyValues(runs []history.RunEntry, provider string) []float64 {
	var values []float64
	for _, run := range runs {
		if entry, ok := run.Results[provider]; ok {
			values = append(values, entry.Accuracy)
		}
	}
	return values
}

// sparkline draws accuracy history as an inline SVG polyline scaled to the
// observed range.
func sparkline(values []float64) template.HTML {
	if len(values) < 2 {
		return `<div class="sparkline">Not enough history</div>`
	}
	const width, height = 140.0, 36.0
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	span := maxVal - minVal
	if span < 1e-6 {
		span = 1e-6
	}
	points := make([]string, len(values))
	for i, v := range values {
		x := float64(i) * (width / float64(len(values)-1))
		y := height - ((v-minVal)/span*(height-6)) - 3
		points[i] = fmt.Sprintf("%.1f,%.1f", x, y)
	}
	path := "M " + strings.Join(points, " L ")
	return template.HTML(fmt.Sprintf(
		`<svg class="sparkline" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" fill="none" xmlns="http://www.w3.org/2000/svg"><path d="%s" stroke="#f97316" stroke-width="2" fill="none" /></svg>`,
		width, height, width, height, path))
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>SearchBench Results - {{.Date}}</title>
  <style>
    :root {
      --bg: #0b0f14;
      --panel: #121826;
      --panel-2: #0f141f;
      --border: #273044;
      --text: #e5e7eb;
      --muted: #94a3b8;
      --accent: #f97316;
      --success: #22c55e;
      --warning: #eab308;
      --error: #ef4444;
    }
    * { box-sizing: border-box; }
    body {
      margin: 0;
      font-family: "Iowan Old Style", "Palatino", "Georgia", "Times New Roman", serif;
      background: radial-gradient(1200px 600px at 10% -10%, #1b2436 0, transparent 60%),
                  linear-gradient(180deg, #0b0f14 0%, #0a0d12 100%);
      color: var(--text);
      line-height: 1.6;
    }
    header { padding: 3.5rem 1.5rem 2rem; text-align: center; }
    header h1 {
      font-family: "Gill Sans", "Trebuchet MS", "Verdana", sans-serif;
      letter-spacing: 0.04em;
      margin-bottom: 0.4rem;
      font-size: clamp(2rem, 3vw, 3rem);
    }
    header p { color: var(--muted); margin: 0; }
    main { max-width: 1100px; margin: 0 auto; padding: 0 1.5rem 3rem; }
    section {
      margin-bottom: 2.5rem;
      background: var(--panel);
      border: 1px solid var(--border);
      border-radius: 16px;
      padding: 1.5rem;
      box-shadow: 0 20px 40px rgba(0,0,0,0.25);
    }
    h2 {
      font-family: "Gill Sans", "Trebuchet MS", "Verdana", sans-serif;
      margin-top: 0;
      font-size: 1.4rem;
      letter-spacing: 0.02em;
    }
    .table-wrap { overflow-x: auto; }
    table { width: 100%; border-collapse: collapse; }
    th, td {
      text-align: left;
      padding: 0.75rem;
      border-bottom: 1px solid var(--border);
      font-size: 0.95rem;
    }
    th { color: var(--muted); font-weight: 600; }
    tr.winner td:first-child { color: var(--accent); font-weight: 700; }
    .trends { display: grid; gap: 1rem; }
    .trend {
      display: grid;
      grid-template-columns: 140px 1fr 80px;
      align-items: center;
      gap: 1rem;
      background: var(--panel-2);
      padding: 0.75rem 1rem;
      border-radius: 12px;
      border: 1px solid var(--border);
    }
    .trend-name {
      font-family: "Gill Sans", "Trebuchet MS", "Verdana", sans-serif;
      font-size: 0.95rem;
      letter-spacing: 0.03em;
    }
    .trend-score { text-align: right; font-weight: 600; }
    .query-card {
      background: var(--panel-2);
      border: 1px solid var(--border);
      border-radius: 14px;
      padding: 1rem;
      margin-bottom: 1rem;
    }
    .query-meta {
      display: flex;
      gap: 0.75rem;
      font-size: 0.85rem;
      color: var(--muted);
      text-transform: uppercase;
      letter-spacing: 0.08em;
      margin-bottom: 0.5rem;
    }
    .query-text { font-weight: 600; margin-bottom: 0.35rem; }
    .expected { font-size: 0.9rem; color: var(--muted); margin-bottom: 0.35rem; }
    .evidence { font-size: 0.85rem; color: var(--muted); margin-bottom: 0.75rem; }
    .answers { display: grid; gap: 0.5rem; }
    .answer-row {
      display: grid;
      grid-template-columns: 110px 110px 1fr;
      gap: 0.75rem;
      align-items: start;
      padding: 0.5rem 0.75rem;
      border-radius: 10px;
      background: rgba(15, 19, 32, 0.8);
      border: 1px solid transparent;
    }
    .provider { font-weight: 600; }
    .verdict {
      font-size: 0.75rem;
      font-weight: 700;
      letter-spacing: 0.08em;
      text-transform: uppercase;
    }
    .verdict-correct, .verdict-plausible { color: var(--success); }
    .verdict-incorrect, .verdict-implausible { color: var(--error); }
    .verdict-unknown { color: var(--warning); }
    .answer { color: var(--muted); font-size: 0.9rem; }
    details summary { cursor: pointer; font-weight: 600; }
    footer { text-align: center; color: var(--muted); padding-bottom: 2.5rem; }
    @media (max-width: 720px) {
      .trend { grid-template-columns: 1fr; text-align: left; }
      .trend-score { text-align: left; }
      .answer-row { grid-template-columns: 1fr; }
    }
  </style>
</head>
<body>
  <header>
    <h1>SearchBench Results</h1>
    <p>{{.Date}} | {{.QueryCount}} queries | {{.ProviderCount}} providers | {{.QuerySet}}</p>
  </header>
  <main>
    <section>
      <h2>Summary</h2>
      <div class="table-wrap">
        <table>
          <thead>
            <tr>
              <th>Provider</th>
              <th>Accuracy</th>
              <th>Avg Latency</th>
              {{if .ShowEvidence}}<th>Evidence Pass</th>{{end}}
              <th>Total Cost</th>
              <th>Errors</th>
            </tr>
          </thead>
          <tbody>
            {{range .SummaryRows}}<tr class="{{if .Winner}}winner{{end}}">
              <td>{{.Name}}</td>
              <td>{{.Accuracy}}</td>
              <td>{{.AvgLatency}}</td>
              {{if $.ShowEvidence}}<td>{{.EvidenceCell}}</td>{{end}}
              <td>{{.Cost}}</td>
              <td>{{.Errors}}</td>
            </tr>
            {{end}}
          </tbody>
        </table>
      </div>
    </section>
    <section>
      <h2>Performance Over Time</h2>
      <div class="trends">
        {{range .TrendRows}}<div class="trend">
          <div class="trend-name">{{.Name}}</div>
          {{.Sparkline}}
          <div class="trend-score">{{.Score}}</div>
        </div>
        {{else}}<p class="muted">No history yet.</p>{{end}}
      </div>
    </section>
    <section>
      <h2>Methodology</h2>
      <p>{{.Methodology}}</p>
      <details>
        <summary>Provider configurations</summary>
        <ul>
          {{range .ConfigItems}}<li><strong>{{.Name}}:</strong> {{.Endpoint}}, {{.Timeout}}</li>
          {{end}}
        </ul>
      </details>
    </section>
    <section>
      <h2>Query Details</h2>
      <details>
        <summary>Show all {{.QueryCount}} results</summary>
        {{range .QueryCards}}<div class="query-card">
          <div class="query-meta">
            <span class="qid">{{.ID}}</span>
            <span class="category">{{.Category}}</span>
          </div>
          <div class="query-text">{{.Text}}</div>
          <div class="expected">{{.Expected}}</div>
          {{if .Evidence}}<div class="evidence">{{.Evidence}}</div>{{end}}
          <div class="answers">
            {{range .Answers}}<div class="answer-row">
              <div class="provider">{{.Provider}}</div>
              <div class="verdict {{.VerdictClass}}">{{.Verdict}}</div>
              <div class="answer">{{.Answer}}</div>
            </div>
            {{end}}
          </div>
        </div>
        {{end}}
      </details>
    </section>
  </main>
  <footer>
    Generated by SearchBench
  </footer>
</body>
</html>
`))
