package digest

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"rfpscout/internal/models"
)

// Source badge colors keyed by source tag; unknown sources get gray.
var sourceBadgeColors = map[string]string{
	models.SourceSAMGov:  "#7c3aed",
	models.SourceBidNet:  "#0891b2",
	models.SourceOpenGov: "#059669",
	models.SourceSerper:  "#1d4ed8",
}

func sourceBadge(source string) string {
	bg, ok := sourceBadgeColors[source]
	if !ok {
		bg = "#374151"
	}

	return fmt.Sprintf(`<span style="display:inline-block;font-size:10px;font-weight:700;`+
		`color:white;background:%s;padding:2px 8px;border-radius:10px;`+
		`letter-spacing:0.04em;">%s</span>`, bg, html.EscapeString(source))
}

func scoreBadge(score int) string {
	bg, label := "#6b7280", "Low"

	switch {
	case score >= 70:
		bg, label = "#16a34a", "High"
	case score >= 50:
		bg, label = "#d97706", "Medium"
	}

	return fmt.Sprintf(`<span style="display:inline-block;font-size:10px;font-weight:700;`+
		`color:white;background:%s;padding:2px 7px;border-radius:10px;`+
		`letter-spacing:0.04em;margin-left:6px;">%s match</span>`, bg, label)
}

// BuildHTML renders the table-based HTML email. Inline styles only,
// for broad email client compatibility.
func BuildHTML(d Digest, maxDescriptionChars int) string {
	var rows strings.Builder

	for _, opp := range d.Opportunities {
		rows.WriteString(opportunityRow(opp, maxDescriptionChars))
	}

	count := len(d.Opportunities)

	noun := "opportunities"
	if count == 1 {
		noun = "opportunity"
	}

	expiringSection := ""
	if len(d.Expiring) > 0 {
		var expRows strings.Builder

		for _, opp := range d.Expiring {
			expRows.WriteString(expiringRow(opp))
		}

		expiringSection = fmt.Sprintf(`
    <div style="padding:14px 28px 10px;background:#fef3c7;border-top:2px solid #fcd34d;">
      <p style="margin:0;font-size:12px;font-weight:700;color:#92400e;
                text-transform:uppercase;letter-spacing:0.08em;">
        ⏰ Expiring Federal Contracts &mdash; Likely Upcoming RFPs
      </p>
      <p style="margin:4px 0 0;font-size:11px;color:#a16207;line-height:1.5;">
        These federal contracts expire within 12 months. Agencies typically
        issue RFPs 3&ndash;6 months before expiry.
      </p>
    </div>
    <table width="100%%" cellpadding="0" cellspacing="0" border="0"
           style="border-collapse:collapse;">
      %s
    </table>`, expRows.String())
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1.0">
  <title>RFP Scout Daily Digest</title>
</head>
<body style="margin:0;padding:0;background:#f1f5f9;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;">
  <div style="max-width:680px;margin:32px auto 48px;background:white;border-radius:14px;
              overflow:hidden;box-shadow:0 4px 24px rgba(0,0,0,0.08);">

    <div style="background:linear-gradient(135deg,#1e3a8a 0%%,#2563eb 100%%);
                padding:36px 32px 28px;">
      <p style="margin:0 0 6px;font-size:11px;font-weight:700;color:#93c5fd;
                text-transform:uppercase;letter-spacing:0.12em;">
        Daily Digest &mdash; %s
      </p>
      <h1 style="margin:0 0 6px;font-size:26px;font-weight:800;color:white;
                 letter-spacing:-0.02em;">
        RFP Scout
      </h1>
      <p style="margin:0;font-size:13px;color:#bfdbfe;line-height:1.5;">
        Case Management &bull; Licensing &bull; Certification &bull; Permitting &bull; Workflow Platforms
      </p>
    </div>

    <div style="background:#eff6ff;padding:14px 28px;border-bottom:1px solid #dbeafe;">
      <span style="font-size:15px;font-weight:700;color:#1e40af;">
        %d new %s found
      </span>
      <span style="font-size:12px;color:#6b7280;margin-left:14px;">%s</span>
    </div>

    <table width="100%%" cellpadding="0" cellspacing="0" border="0"
           style="border-collapse:collapse;">
      %s
    </table>
%s

    <div style="padding:24px 28px;background:#f8fafc;border-top:1px solid #e2e8f0;">
      <p style="margin:0;font-size:11px;color:#94a3b8;text-align:center;line-height:1.6;">
        RFP Scout &mdash; Automated daily digest<br>
        Opportunities are scored by relevance to case management, licensing, certification,
        and related government/nonprofit software platforms.
      </p>
    </div>

  </div>
</body>
</html>`,
		d.GeneratedAt.Format("January 2, 2006"),
		count, noun,
		sourceSummary(d.Opportunities),
		rows.String(),
		expiringSection)
}

// sourceSummary renders the per-source counts line, sources sorted
// alphabetically.
func sourceSummary(opportunities []models.ScoredOpportunity) string {
	bySource := make(map[string]int)

	for _, opp := range opportunities {
		source := opp.Source
		if source == "" {
			source = "Other"
		}

		bySource[source]++
	}

	names := make([]string, 0, len(bySource))
	for name := range bySource {
		names = append(names, name)
	}

	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: <strong>%d</strong>",
			html.EscapeString(name), bySource[name]))
	}

	return strings.Join(parts, " &nbsp;|&nbsp; ")
}

func opportunityRow(opp models.ScoredOpportunity, maxDescriptionChars int) string {
	description := truncateEllipsis(opp.Description, maxDescriptionChars)

	var meta []string
	if opp.PostedDate != "" {
		meta = append(meta, "<span>📅 "+html.EscapeString(opp.PostedDate)+"</span>")
	}

	if opp.Agency != "" {
		meta = append(meta, "<span>🏛 "+html.EscapeString(opp.Agency)+"</span>")
	}

	metaHTML := strings.Join(meta, `<span style="color:#d1d5db">&nbsp;|&nbsp;</span>`)

	metaSep := ""
	if len(meta) > 0 {
		metaSep = `<span style="color:#d1d5db">&nbsp;|&nbsp;</span>`
	}

	descriptionHTML := ""
	if description != "" {
		descriptionHTML = "<p style='font-size:13px;color:#6b7280;margin:0 0 10px;line-height:1.6;'>" +
			html.EscapeString(description) + "</p>"
	}

	return fmt.Sprintf(`
        <tr>
          <td style="padding:20px 28px;border-bottom:1px solid #f0f0f0;vertical-align:top;">
            <div style="margin-bottom:8px;">
              %s
              %s
            </div>
            <a href="%s"
               style="font-size:15px;font-weight:600;color:#1e40af;text-decoration:none;
                      line-height:1.4;display:block;margin:6px 0 8px;">
              %s
            </a>
            %s
            <div style="font-size:12px;color:#9ca3af;">
              %s
              %s
              <a href="%s"
                 style="color:#3b82f6;text-decoration:none;font-weight:500;">
                View opportunity →
              </a>
            </div>
          </td>
        </tr>`,
		sourceBadge(opp.Source),
		scoreBadge(opp.Score),
		html.EscapeString(opp.URL),
		html.EscapeString(opp.Title),
		descriptionHTML,
		metaHTML,
		metaSep,
		html.EscapeString(opp.URL))
}

func expiringRow(opp models.Opportunity) string {
	description := truncateEllipsis(opp.Description, 300)

	var meta []string
	if opp.PostedDate != "" {
		// PostedDate carries the contract end date for this section.
		meta = append(meta, "<span>⏰ Expires: "+html.EscapeString(opp.PostedDate)+"</span>")
	}

	if opp.Agency != "" {
		meta = append(meta, "<span>🏛 "+html.EscapeString(opp.Agency)+"</span>")
	}

	metaHTML := strings.Join(meta, `<span style="color:#d1d5db">&nbsp;|&nbsp;</span>`)

	metaSep := ""
	if len(meta) > 0 {
		metaSep = `<span style="color:#d1d5db">&nbsp;|&nbsp;</span>`
	}

	descriptionHTML := ""
	if description != "" {
		descriptionHTML = "<p style='font-size:12px;color:#78716c;margin:0 0 8px;line-height:1.5;'>" +
			html.EscapeString(description) + "</p>"
	}

	return fmt.Sprintf(`
        <tr>
          <td style="padding:16px 28px;border-bottom:1px solid #fef3c7;vertical-align:top;
                     background:#fffbeb;">
            <div style="margin-bottom:6px;">
              <span style="display:inline-block;font-size:10px;font-weight:700;color:white;
                           background:#d97706;padding:2px 8px;border-radius:10px;
                           letter-spacing:0.04em;">Expiring Federal Contract</span>
            </div>
            <a href="%s"
               style="font-size:14px;font-weight:600;color:#92400e;text-decoration:none;
                      line-height:1.4;display:block;margin:6px 0 8px;">
              %s
            </a>
            %s
            <div style="font-size:11px;color:#a8a29e;">
              %s
              %s
              <a href="%s"
                 style="color:#b45309;text-decoration:none;font-weight:500;">
                View on USASpending →
              </a>
            </div>
          </td>
        </tr>`,
		html.EscapeString(opp.URL),
		html.EscapeString(opp.Title),
		descriptionHTML,
		metaHTML,
		metaSep,
		html.EscapeString(opp.URL))
}
