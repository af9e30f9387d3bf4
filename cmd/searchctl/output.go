package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/kailas-cloud/talentsearch"
)

type stagePrinter struct {
	out  io.Writer
	json bool
}

func newStagePrinter(out io.Writer, jsonOutput bool) *stagePrinter {
	return &stagePrinter{out: out, json: jsonOutput}
}

type stageJSON struct {
	SearchID     string      `json:"search_id"`
	Stage        string      `json:"stage"`
	StageNumber  int         `json:"stage_number"`
	ElapsedMs    int64       `json:"elapsed_ms"`
	IsFinal      bool        `json:"is_final"`
	CacheHit     bool        `json:"cache_hit"`
	QualityScore *float64    `json:"quality_score,omitempty"`
	Degraded     []string    `json:"degraded,omitempty"`
	Results      []matchJSON `json:"results"`
}

type matchJSON struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Title         string   `json:"title"`
	FinalScore    float64  `json:"final_score"`
	Tier          *int     `json:"tier"`
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Print writes one stage, either as a JSON line or as a table.
func (p *stagePrinter) Print(st *talentsearch.StageResult) error {
	if p.json {
		return json.NewEncoder(p.out).Encode(toStageJSON(st))
	}

	header := fmt.Sprintf("== stage %d/3 %s (%dms", st.Number, st.Stage, st.Elapsed.Milliseconds())
	if st.CacheHit {
		header += ", cached"
	}
	if st.QualityScore != nil {
		header += fmt.Sprintf(", quality %.2f", *st.QualityScore)
	}
	if d := degradedFlags(st.Degraded); len(d) > 0 {
		header += ", degraded: " + strings.Join(d, " ")
	}
	header += ")"
	if _, err := fmt.Fprintln(p.out, header); err != nil {
		return err
	}

	if len(st.Matches) == 0 {
		_, err := fmt.Fprintln(p.out, "  no matches")
		return err
	}

	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "  #\tID\tNAME\tTITLE\tSCORE\tTIER\tMATCHED\tMISSING")
	for i := range st.Matches {
		m := &st.Matches[i]
		_, _ = fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%.3f\t%s\t%s\t%s\n",
			i+1, m.ID, m.Name, m.Title, m.FinalScore, tierLabel(m.Tier),
			strings.Join(m.MatchedSkills, ","), strings.Join(m.MissingSkills, ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if st.IsFinal {
		for i := range st.Matches {
			if e := st.Matches[i].Explanation; e != nil {
				_, _ = fmt.Fprintf(p.out, "  %s: %s\n", st.Matches[i].ID, e.Summary)
			}
		}
	}
	return nil
}

func toStageJSON(st *talentsearch.StageResult) stageJSON {
	out := stageJSON{
		SearchID:     st.SearchID,
		Stage:        string(st.Stage),
		StageNumber:  st.Number,
		ElapsedMs:    st.Elapsed.Milliseconds(),
		IsFinal:      st.IsFinal,
		CacheHit:     st.CacheHit,
		QualityScore: st.QualityScore,
		Degraded:     degradedFlags(st.Degraded),
		Results:      make([]matchJSON, len(st.Matches)),
	}
	for i := range st.Matches {
		m := &st.Matches[i]
		r := matchJSON{
			ID:            m.ID,
			Name:          m.Name,
			Title:         m.Title,
			FinalScore:    m.FinalScore,
			MatchedSkills: nonNil(m.MatchedSkills),
			MissingSkills: nonNil(m.MissingSkills),
		}
		if m.Tier > 0 {
			tier := m.Tier
			r.Tier = &tier
		}
		if m.Explanation != nil {
			r.Explanation = m.Explanation.Summary
		}
		out.Results[i] = r
	}
	return out
}

func degradedFlags(d talentsearch.Degraded) []string {
	var flags []string
	if d.VectorUnavailable {
		flags = append(flags, "vector")
	}
	if d.EnhancementUnavailable {
		flags = append(flags, "enhancement")
	}
	if d.Partial {
		flags = append(flags, "partial")
	}
	return flags
}

func tierLabel(tier int) string {
	if tier == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", tier)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
