package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/snip/internal/client/models"
)

// shadedRow is the background of every other list row.
const shadedRow = lipgloss.Color("235")

func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// renderList prints an underlined Id/Tags/Name header and one row per
// snippet, shading alternate rows.
func renderList(w io.Writer, list []*models.Snippet) {
	r := lipgloss.NewRenderer(w)
	header := r.NewStyle().Underline(true)
	plain := r.NewStyle()
	shaded := r.NewStyle().Background(shadedRow)

	idW, tagsW, nameW := len("Id"), len("Tags"), len("Name")
	rows := make([][3]string, 0, len(list))
	for _, s := range list {
		row := [3]string{strconv.FormatInt(s.ID, 10), strings.Join(s.Tags, ", "), s.Name}
		idW = max(idW, lipgloss.Width(row[0]))
		tagsW = max(tagsW, lipgloss.Width(row[1]))
		nameW = max(nameW, lipgloss.Width(row[2]))
		rows = append(rows, row)
	}

	fmt.Fprintf(w, "%s %s %s\n",
		header.Render(pad("Id", idW)),
		header.Render(pad("Tags", tagsW)),
		header.Render(pad("Name", nameW)))

	for i, row := range rows {
		style := plain
		if i%2 == 1 {
			style = shaded
		}
		line := pad(row[0], idW) + " " + pad(row[1], tagsW) + " " + pad(row[2], nameW)
		fmt.Fprintln(w, style.Render(line))
	}
}

// renderSnippet prints the name, the tags if any, a blank line and the content.
func renderSnippet(w io.Writer, s *models.Snippet) {
	label := lipgloss.NewRenderer(w).NewStyle().Bold(true)

	fmt.Fprintf(w, "%s %s\n", label.Render("Name:"), s.Name)
	if len(s.Tags) > 0 {
		fmt.Fprintf(w, "%s %s\n", label.Render("Tags:"), strings.Join(s.Tags, ", "))
	}
	fmt.Fprintf(w, "\n%s", s.Content)
	if !strings.HasSuffix(s.Content, "\n") {
		fmt.Fprintln(w)
	}
}
