package miramon

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/geopolygonize/polygonize/internal/raster"
)

// RelFile is a parsed REL metadata sidecar: an INI-like file with
// bracketed section names, "key=value" entries, continuation lines when a
// line carries no "=", and ";"/"#" comments.
type RelFile struct {
	path     string
	sections map[string]map[string]string
	consumed map[string]bool
}

// ParseRel reads and parses a REL metadata file.
func ParseRel(path string) (*RelFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &raster.IOFailure{Op: "open REL file", Err: err}
	}
	defer f.Close()

	rel := &RelFile{
		path:     path,
		sections: make(map[string]map[string]string),
		consumed: make(map[string]bool),
	}

	section := ""
	lastKey := ""
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			section = strings.ToUpper(strings.TrimSpace(trimmed[1 : len(trimmed)-1]))
			if rel.sections[section] == nil {
				rel.sections[section] = make(map[string]string)
			}
			lastKey = ""
			continue
		}

		if section == "" {
			return nil, &raster.MalformedInput{Reason: fmt.Sprintf("REL %s:%d: entry outside any section", path, lineNo)}
		}

		if eq := strings.Index(trimmed, "="); eq >= 0 {
			key := strings.ToUpper(strings.TrimSpace(trimmed[:eq]))
			val := strings.TrimSpace(trimmed[eq+1:])
			rel.sections[section][key] = val
			lastKey = key
			continue
		}

		// Continuation: no "=" on this line extends the previous value.
		if lastKey == "" {
			return nil, &raster.MalformedInput{Reason: fmt.Sprintf("REL %s:%d: continuation line with no preceding key", path, lineNo)}
		}
		rel.sections[section][lastKey] += "\n" + trimmed
	}
	if err := scanner.Err(); err != nil {
		return nil, &raster.IOFailure{Op: "scan REL file", Err: err}
	}

	return rel, nil
}

// get returns a key's value from a section, marking it consumed so
// Metadata can later report what was never asked for.
func (r *RelFile) get(section, key string) (string, bool) {
	section = strings.ToUpper(section)
	key = strings.ToUpper(key)
	vals, ok := r.sections[section]
	if !ok {
		return "", false
	}
	v, ok := vals[key]
	if ok {
		r.consumed[section+"."+key] = true
	}
	return v, ok
}

// Metadata returns every (SECTION.KEY) entry the REL file declared that
// BandNames/Band never consumed, letting a caller surface leftover
// metadata the core doesn't need to understand.
func (r *RelFile) Metadata() map[string]string {
	out := make(map[string]string)
	for section, kv := range r.sections {
		for key, val := range kv {
			full := section + "." + key
			if !r.consumed[full] {
				out[full] = val
			}
		}
	}
	return out
}

// BandNames returns the band sub-section names declared by
// ATTRIBUTE_DATA's IndexesNomsCamps token list.
func (r *RelFile) BandNames() ([]string, error) {
	idx, ok := r.get("ATTRIBUTE_DATA", "IndexesNomsCamps")
	if !ok {
		return nil, &raster.MalformedInput{Reason: "REL: ATTRIBUTE_DATA.IndexesNomsCamps missing"}
	}

	var names []string
	for _, tok := range strings.Split(idx, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		name, ok := r.get("ATTRIBUTE_DATA", "NomCamp_"+tok)
		if !ok {
			return nil, &raster.MalformedInput{Reason: fmt.Sprintf("REL: ATTRIBUTE_DATA.NomCamp_%s missing", tok)}
		}
		names = append(names, name)
	}
	return names, nil
}

// BandMeta is the metadata extracted for one band sub-section.
type BandMeta struct {
	Name       string
	RawFile    string
	Columns    int
	Rows       int
	Type       DataType
	HasNoData  bool
	NoData     float64
	MinX, MaxX float64
	MinY, MaxY float64
}

// Band extracts and validates the metadata for one band sub-section.
func (r *RelFile) Band(name string) (*BandMeta, error) {
	section := name
	req := func(key string) (string, error) {
		v, ok := r.get(section, key)
		if !ok {
			return "", &raster.MalformedInput{Reason: fmt.Sprintf("REL band %q: missing %s", name, key)}
		}
		return v, nil
	}

	rawFile, err := req("NomFitxer")
	if err != nil {
		return nil, err
	}
	colsStr, err := req("columns")
	if err != nil {
		return nil, err
	}
	rowsStr, err := req("rows")
	if err != nil {
		return nil, err
	}
	typeStr, err := req("TipusCompressio")
	if err != nil {
		return nil, err
	}

	cols, err := strconv.Atoi(strings.TrimSpace(colsStr))
	if err != nil {
		return nil, &raster.MalformedInput{Reason: fmt.Sprintf("REL band %q: invalid columns %q", name, colsStr)}
	}
	rows, err := strconv.Atoi(strings.TrimSpace(rowsStr))
	if err != nil {
		return nil, &raster.MalformedInput{Reason: fmt.Sprintf("REL band %q: invalid rows %q", name, rowsStr)}
	}

	dt, ok := typeToken[strings.ToLower(strings.TrimSpace(typeStr))]
	if !ok {
		return nil, &raster.UnsupportedOperation{Reason: fmt.Sprintf("REL band %q: unknown TipusCompressio %q", name, typeStr)}
	}

	meta := &BandMeta{
		Name:    name,
		RawFile: rawFile,
		Columns: cols,
		Rows:    rows,
		Type:    dt,
	}

	if nd, ok := r.get(section, "NODATA"); ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(nd), 64)
		if err != nil {
			return nil, &raster.MalformedInput{Reason: fmt.Sprintf("REL band %q: invalid NODATA %q", name, nd)}
		}
		meta.HasNoData = true
		meta.NoData = v
	}

	extentSection := section + ":EXTENT"
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"MinX", &meta.MinX}, {"MaxX", &meta.MaxX},
		{"MinY", &meta.MinY}, {"MaxY", &meta.MaxY},
	} {
		if v, ok := r.get(extentSection, f.key); ok {
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, &raster.MalformedInput{Reason: fmt.Sprintf("REL band %q: invalid EXTENT.%s %q", name, f.key, v)}
			}
			*f.dst = parsed
		}
	}

	return meta, nil
}

// RawFilePath resolves a band's raw file name relative to the REL file's
// own directory, matching MiraMon's convention of co-located sidecars.
func (r *RelFile) RawFilePath(meta *BandMeta) string {
	if filepath.IsAbs(meta.RawFile) {
		return meta.RawFile
	}
	return filepath.Join(filepath.Dir(r.path), meta.RawFile)
}

// LooksLikeMMR reports whether path plausibly names an MMR REL file by
// its identification rule: the name ends in "I.rel", case-insensitively.
func LooksLikeMMR(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), "i.rel")
}
