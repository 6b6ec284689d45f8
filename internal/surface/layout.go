package surface

import "strings"

// Text metrics for the fixed server-side fonts we draw with. Kept in sync
// with the font list defaults; a proportional font would need real extents.
const (
	LineHeight = 16
	CharWidth  = 7
	PadX       = 10
	PadY       = 8
)

// MaxLineChars returns how many characters fit on one line of a surface of
// the given pixel width.
func MaxLineChars(width int) int {
	chars := (width - 2*PadX) / CharWidth
	if chars < 1 {
		return 1
	}
	return chars
}

// WrapLines word-wraps text to maxChars columns. Explicit newlines are
// preserved; words longer than a line are broken hard.
func WrapLines(text string, maxChars int) []string {
	if maxChars < 1 {
		maxChars = 1
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		if strings.TrimSpace(paragraph) == "" {
			lines = append(lines, "")
			continue
		}

		current := ""
		for _, word := range strings.Fields(paragraph) {
			for len(word) > maxChars {
				if current != "" {
					lines = append(lines, current)
					current = ""
				}
				lines = append(lines, word[:maxChars])
				word = word[maxChars:]
			}
			if word == "" {
				continue
			}

			switch {
			case current == "":
				current = word
			case len(current)+1+len(word) <= maxChars:
				current += " " + word
			default:
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		}
	}

	// A trailing empty paragraph renders as a blank line; strip it.
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// FitHeight returns the pixel height needed for lineCount text lines,
// clamped to [minHeight, maxHeight].
func FitHeight(lineCount, minHeight, maxHeight int) int {
	h := lineCount*LineHeight + 2*PadY
	if h < minHeight {
		h = minHeight
	}
	if h > maxHeight {
		h = maxHeight
	}
	return h
}

// VisibleLines returns how many text lines fit in a surface of the given
// pixel height.
func VisibleLines(height int) int {
	n := (height - 2*PadY) / LineHeight
	if n < 1 {
		return 1
	}
	return n
}

// TopCenter returns the origin that centers a surface of the given width
// horizontally in the work area, offset marginTop from its top edge.
func TopCenter(workX, workY, workWidth, marginTop, width int) (int, int) {
	x := workX + (workWidth-width)/2
	if x < workX {
		x = workX
	}
	return x, workY + marginTop
}
