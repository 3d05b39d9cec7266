package miramon

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/geopolygonize/polygonize/internal/raster"
)

// RGB is one palette entry.
type RGB struct {
	R, G, B uint8
}

// ParsePalette reads a MiraMon palette sidecar in the flat text form
// (".pal"/".p25"/".p65", one "index R G B" row per line, 64/256/65536
// rows). A dBASE-form palette (CLAUSIMBOL/R_COLOR/G_COLOR/B_COLOR
// columns) is recognized by its leading 0x03 header byte but not decoded:
// it returns UnsupportedOperation. A malformed text row fails the whole
// parse with MalformedInput. The result is indexed by palette entry
// (result[i] is the color for raster value i).
func ParsePalette(path string) ([]RGB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &raster.IOFailure{Op: "open palette file", Err: err}
	}
	defer f.Close()

	magic := make([]byte, 3)
	n, _ := f.Read(magic)
	f.Seek(0, 0)
	if n >= 1 && magic[0] == 0x03 {
		return nil, &raster.UnsupportedOperation{Reason: "miramon: DBF-form palette not supported, convert to flat text form"}
	}

	return parseFlatPalette(f, path)
}

func parseFlatPalette(f *os.File, path string) ([]RGB, error) {
	var entries []RGB
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, &raster.MalformedInput{Reason: fmt.Sprintf("palette %s:%d: expected \"index R G B\"", path, lineNo)}
		}
		idx, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, &raster.MalformedInput{Reason: fmt.Sprintf("palette %s:%d: invalid index %q", path, lineNo, fields[0])}
		}
		r, rerr := strconv.Atoi(fields[1])
		g, gerr := strconv.Atoi(fields[2])
		b, berr := strconv.Atoi(fields[3])
		if rerr != nil || gerr != nil || berr != nil {
			return nil, &raster.MalformedInput{Reason: fmt.Sprintf("palette %s:%d: invalid RGB triple", path, lineNo)}
		}
		for len(entries) <= idx {
			entries = append(entries, RGB{})
		}
		entries[idx] = RGB{R: uint8(r), G: uint8(g), B: uint8(b)}
	}
	if err := scanner.Err(); err != nil {
		return nil, &raster.IOFailure{Op: "scan palette file", Err: err}
	}
	return entries, nil
}
