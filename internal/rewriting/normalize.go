package rewriting

import (
	"strings"
	"unicode"
)

const (
	// ItemPrefix marks a list item line.
	ItemPrefix = `\item`
	// ListOpen opens the list environment a skills section lives in.
	ListOpen = `\begin{itemize}`
	// ListClose closes it.
	ListClose = `\end{itemize}`
)

// NormalizeListBlock restores the list wrapper a model sometimes drops.
// If text contains item lines but no ListOpen marker, the result is a single
// itemize block holding only the item lines, in order; any other lines the
// model emitted are discarded. Otherwise text is returned unchanged.
func NormalizeListBlock(text string) string {
	if strings.Contains(text, ListOpen) {
		return text
	}

	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if IsItemLine(line) {
			items = append(items, line)
		}
	}
	if len(items) == 0 {
		return text
	}

	return ListOpen + "\n" + strings.Join(items, "\n") + "\n" + ListClose
}

// IsItemLine reports whether a line starts with the \item command, ignoring
// indentation. Longer command names such as \itemsep do not count.
func IsItemLine(line string) bool {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	if !strings.HasPrefix(trimmed, ItemPrefix) {
		return false
	}
	rest := trimmed[len(ItemPrefix):]
	if rest == "" {
		return true
	}
	r := []rune(rest)[0]
	return !unicode.IsLetter(r)
}
