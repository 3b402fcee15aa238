package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chatlog-viewer/internal"
	"github.com/mattn/go-runewidth"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	senderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// truncate shortens s to width display cells
func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "...")
}

// orDash renders empty values as a dash
func orDash(s string) string {
	if s == "" {
		return dateStyle.Render("—")
	}
	return s
}

// formatWhen renders a timestamp relative to now, like "Today 15:04"
func formatWhen(t time.Time, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff >= 0 && diff < 24*time.Hour && t.Day() == now.Day():
		return t.Format("Today 15:04")
	case diff >= 0 && diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff >= 0 && diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02 15:04")
	}
}

func displaySources(w io.Writer, sources []internal.Source, current *internal.Source) {
	if len(sources) == 0 {
		fmt.Fprintln(w, headerStyle.Render("📋 No sources found"))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("📋 Found %d source(s)", len(sources))))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, " \t"+titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Status")+"\t")
	for _, src := range sources {
		marker := " "
		if current != nil && current.SourceID == src.SourceID {
			marker = successStyle.Render("*")
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			marker,
			idStyle.Render(src.SourceID),
			nameStyle.Render(truncate(src.Name, 40)),
			orDash(src.Status))
	}
	_ = tw.Flush()

	fmt.Fprintln(w)
	if current == nil {
		fmt.Fprintln(w, idStyle.Render("💡 Tip: select a source with `chatlog-viewer sources use <id>`"))
	}
}

func displaySessions(w io.Writer, sessions []internal.SessionRecord) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, headerStyle.Render("📋 No sessions found"))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("📋 Found %d session(s)", len(sessions))))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, titleStyle.Render("Name")+"\t"+titleStyle.Render("ID")+"\t"+titleStyle.Render("Last Message")+"\t")
	_, _ = fmt.Fprintln(tw, strings.Repeat("─", 80))
	for _, s := range sessions {
		name := s.DisplayName
		if name == "" {
			name = "Untitled"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t\n",
			nameStyle.Render(truncate(name, 40)),
			idStyle.Render(s.ID),
			dateStyle.Render(orDash(s.LastMessageTime)))
	}
	_ = tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(w, idStyle.Render("💡 Tip: show messages with `chatlog-viewer chatlog --talker "+sessions[0].ID+"`"))
}

// preferredContactKeys are shown first when present
var preferredContactKeys = []string{"userName", "alias", "remark", "nickName"}

// contactColumns picks the columns for a contact table: preferred keys
// first, then the remaining keys sorted
func contactColumns(contacts []internal.Contact) []string {
	present := make(map[string]bool)
	for _, c := range contacts {
		for k := range c {
			present[k] = true
		}
	}

	var columns []string
	for _, k := range preferredContactKeys {
		if present[k] {
			columns = append(columns, k)
			delete(present, k)
		}
	}
	rest := make([]string, 0, len(present))
	for k := range present {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(columns, rest...)
}

func displayContacts(w io.Writer, page internal.Page[internal.Contact], current, pageSize int) {
	if len(page.Items) == 0 {
		fmt.Fprintln(w, headerStyle.Render("📋 No contacts found"))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("📋 %d of %d contact(s)", len(page.Items), page.Total)))
	fmt.Fprintln(w)

	columns := contactColumns(page.Items)
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	titles := make([]string, len(columns))
	for i, col := range columns {
		titles[i] = titleStyle.Render(col)
	}
	_, _ = fmt.Fprintln(tw, strings.Join(titles, "\t")+"\t")
	for _, c := range page.Items {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = orDash(truncate(c.Field(col), 30))
		}
		_, _ = fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	_ = tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(w, dateStyle.Render(pageSummary(current, pageSize, page.Total)))
}

func pageSummary(current, pageSize, total int) string {
	pages := 1
	if pageSize > 0 && total > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	return fmt.Sprintf("Page %d of %d (%d per page, %s total)", current, pages, pageSize, strconv.Itoa(total))
}

func displayChatLogs(w io.Writer, records []internal.ChatLogRecord, pagination *internal.Pagination) {
	if len(records) == 0 {
		fmt.Fprintln(w, headerStyle.Render("💬 No messages found"))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("💬 %d message(s)", len(records))))
	fmt.Fprintln(w)

	now := time.Now()
	for _, rec := range records {
		when := rec.Time
		if rec.HasTimestamp() {
			when = formatWhen(rec.At(), now)
		}
		sender := rec.SenderName
		if sender == "" {
			sender = rec.SenderID
		}
		fmt.Fprintf(w, "%s %s %s\n",
			senderStyle.Render(sender),
			idStyle.Render("("+rec.SenderID+")"),
			timestampStyle.Render(when))
		fmt.Fprintln(w, contentStyle.Render(rec.Content))
		fmt.Fprintln(w)
	}

	if pagination != nil {
		fmt.Fprintln(w, dateStyle.Render(pageSummary(pagination.Current, pagination.PageSize, pagination.Total)))
	}
}

func displayTable(w io.Writer, table *internal.Table) {
	if table == nil || len(table.Rows) == 0 {
		fmt.Fprintln(w, headerStyle.Render("📋 No rows found"))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("📋 %d row(s)", len(table.Rows))))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	titles := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		titles[i] = titleStyle.Render(col)
	}
	_, _ = fmt.Fprintln(tw, strings.Join(titles, "\t")+"\t")
	for _, row := range table.Rows {
		cells := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			cells[i] = truncate(row.Get(col), 40)
		}
		_, _ = fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	_ = tw.Flush()
}
