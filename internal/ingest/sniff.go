package ingest

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var delimiterCandidates = []rune{';', ',', '\t', '|'}

// sniffDelimiter picks the candidate that splits the sample lines most
// consistently. Used when the primary delimiter produced a single column or
// the read failed outright.
func sniffDelimiter(data []byte) rune {
	lines := sampleLines(data, 10)
	best := ';'
	bestScore := -1

	for _, cand := range delimiterCandidates {
		counts := make(map[int]int)
		for _, line := range lines {
			n := strings.Count(line, string(cand))
			if n > 0 {
				counts[n]++
			}
		}
		// score: most lines agreeing on the same non-zero count
		score := 0
		width := 0
		for n, c := range counts {
			if c > score || (c == score && n > width) {
				score = c
				width = n
			}
		}
		if score > bestScore {
			bestScore = score
			best = cand
		}
	}
	return best
}

func sampleLines(data []byte, max int) []string {
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) >= max {
			break
		}
	}
	return lines
}

// decodePermissive strips a UTF-8 BOM and falls back to Windows-1254 (the
// Turkish export encoding) when the bytes are not valid UTF-8. Bytes that
// survive neither are dropped rather than failing the file.
func decodePermissive(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return data
	}
	if decoded, err := charmap.Windows1254.NewDecoder().Bytes(data); err == nil {
		return decoded
	}
	return []byte(strings.ToValidUTF8(string(data), ""))
}

var platformKeywords = []struct {
	keyword string
	tag     string
}{
	{"trendyol", "trendyol"},
	{"hepsiburada", "hepsiburada"},
	{"hb", "hepsiburada"},
	{"n11", "n11"},
}

// sniffSource derives a source tag from the uploaded file name: a known
// platform keyword wins, otherwise the bare file name, otherwise "unknown".
func sniffSource(fileName string) string {
	base := filepath.Base(fileName)
	lower := strings.ToLower(base)
	for _, p := range platformKeywords {
		if strings.Contains(lower, p.keyword) {
			return p.tag
		}
	}
	if name := strings.TrimSuffix(base, filepath.Ext(base)); name != "" && name != "." {
		return name
	}
	return "unknown"
}
