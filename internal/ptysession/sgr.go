package ptysession

import "strconv"

// applySGR parses the ANSI SGR escape fragment midterm's Format.Render()
// emits (e.g. "\x1b[1;31m") and sets the corresponding fields on cell. This
// is the only grounded way to recover per-cell attributes from the pinned
// midterm version, whose unexported Format fields are not part of its
// evidenced public contract (see DESIGN.md).
func applySGR(cell *Cell, rendered string) {
	params := extractParams(rendered)
	i := 0
	for i < len(params) {
		code := params[i]
		switch {
		case code == 0:
			*cell = Cell{Ch: cell.Ch}
		case code == 1:
			cell.Bold = true
		case code == 3:
			cell.Italic = true
		case code == 4:
			cell.Underline = true
		case code == 7:
			cell.Reverse = true
		case code == 22:
			cell.Bold = false
		case code == 23:
			cell.Italic = false
		case code == 24:
			cell.Underline = false
		case code == 27:
			cell.Reverse = false
		case code >= 30 && code <= 37:
			c := Indexed(uint8(code - 30))
			cell.Fg = &c
		case code == 38:
			n, consumed := parseExtendedColor(params[i:])
			cell.Fg = n
			i += consumed
			continue
		case code == 39:
			cell.Fg = nil
		case code >= 40 && code <= 47:
			c := Indexed(uint8(code - 40))
			cell.Bg = &c
		case code == 48:
			n, consumed := parseExtendedColor(params[i:])
			cell.Bg = n
			i += consumed
			continue
		case code == 49:
			cell.Bg = nil
		case code >= 90 && code <= 97:
			c := Indexed(uint8(code - 90 + 8))
			cell.Fg = &c
		case code >= 100 && code <= 107:
			c := Indexed(uint8(code - 100 + 8))
			cell.Bg = &c
		}
		i++
	}
}

// parseExtendedColor handles the "38;5;N" (palette) and "38;2;R;G;B"
// (truecolor) forms, returning the color and how many params it consumed
// (not counting the leading 38/48 itself).
func parseExtendedColor(params []int) (*Color, int) {
	if len(params) < 2 {
		return nil, 1
	}
	switch params[1] {
	case 5:
		if len(params) < 3 {
			return nil, 2
		}
		c := Palette(uint8(params[2]))
		return &c, 3
	case 2:
		if len(params) < 5 {
			return nil, 2
		}
		c := RGB(uint8(params[2]), uint8(params[3]), uint8(params[4]))
		return &c, 5
	}
	return nil, 1
}

// extractParams pulls the semicolon-delimited numeric parameters out of an
// SGR fragment like "\x1b[1;31m", tolerating a missing leading escape/CSI
// prefix or trailing final byte.
func extractParams(s string) []int {
	start := 0
	for i, r := range s {
		if r >= '0' && r <= '9' {
			start = i
			break
		}
		start = i + 1
	}
	end := len(s)
	for end > start && !isDigitOrSemi(s[end-1]) {
		end--
	}
	if start >= end {
		return nil
	}
	body := s[start:end]

	var params []int
	field := ""
	flush := func() {
		if field == "" {
			params = append(params, 0)
		} else if n, err := strconv.Atoi(field); err == nil {
			params = append(params, n)
		}
		field = ""
	}
	for _, r := range body {
		if r == ';' {
			flush()
			continue
		}
		field += string(r)
	}
	flush()
	return params
}

func isDigitOrSemi(b byte) bool {
	return (b >= '0' && b <= '9') || b == ';'
}
