package stats

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

const (
	barChar             = "█"
	minBarWidth         = 10
	terminalWidthBackup = 80
)

// WriteReport renders the aggregated statistics as a text report sized to
// width terminal cells.
func WriteReport(w io.Writer, r Report, width int) error {
	if width <= 0 {
		width = TerminalWidth()
	}

	sections := []struct {
		title string
		lines []string
	}{
		{"唐代诗人收录 TOP 10", renderBars(r.TangAuthors, width)},
		{"宋代词人收录 TOP 10", renderBars(r.SongAuthors, width)},
		{"高频字 TOP 20", renderFrequencyTable(r.TopChars)},
		{"高频词 TOP 20", renderFrequencyTable(r.TopSegments)},
	}

	for _, s := range sections {
		if len(s.lines) == 0 {
			continue
		}
		if _, err := fmt.Fprintln(w, s.title); err != nil {
			return err
		}
		for _, line := range s.lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
	}
	return nil
}

// renderBars draws one scaled horizontal bar per entry.
func renderBars(entries []Entry, width int) []string {
	if len(entries) == 0 {
		return nil
	}

	labelWidth := 0
	countWidth := 0
	maxCount := 0
	for _, e := range entries {
		if w := displayWidth(e.Text); w > labelWidth {
			labelWidth = w
		}
		if w := len(strconv.Itoa(e.Count)); w > countWidth {
			countWidth = w
		}
		if e.Count > maxCount {
			maxCount = e.Count
		}
	}
	if maxCount == 0 {
		return nil
	}

	barWidth := width - labelWidth - countWidth - 2
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		n := e.Count * barWidth / maxCount
		if n == 0 && e.Count > 0 {
			n = 1
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			padCell(e.Text, labelWidth, false),
			padCell(strconv.Itoa(e.Count), countWidth, true),
			strings.Repeat(barChar, n)))
	}
	return lines
}

func renderFrequencyTable(entries []Entry) []string {
	if len(entries) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []string{strconv.Itoa(i + 1), e.Text, strconv.Itoa(e.Count)})
	}
	return formatTable([]string{"#", "词", "次数"}, rows, map[int]bool{0: true, 2: true})
}

// TerminalWidth reports the stdout width, with a fixed backup for pipes.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
