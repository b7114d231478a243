package assessment

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type ImportFormat string

const (
	FormatJSON ImportFormat = "json"
	FormatCSV  ImportFormat = "csv"
	FormatYAML ImportFormat = "yaml"
)

var ErrUnsupportedFormat = errors.New("unsupported file type, upload JSON, CSV or YAML")

// DetectFormat picks the import format from the declared content type, then
// the file extension, then the first non-space byte.
func DetectFormat(contentType, filename string, head []byte) (ImportFormat, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch ct {
	case "application/json":
		return FormatJSON, nil
	case "text/csv", "application/csv":
		return FormatCSV, nil
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return FormatYAML, nil
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	if b := bytes.TrimSpace(head); len(b) > 0 && (b[0] == '{' || b[0] == '[') {
		return FormatJSON, nil
	}
	return "", ErrUnsupportedFormat
}

// ParseRubric decodes an uploaded rubric into a validated RubricInput.
func ParseRubric(format ImportFormat, r io.Reader) (RubricInput, error) {
	var (
		in  RubricInput
		err error
	)
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&in)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&in)
	case FormatCSV:
		in, err = parseRubricCSV(r)
	default:
		return RubricInput{}, ErrUnsupportedFormat
	}
	if err != nil {
		return RubricInput{}, fmt.Errorf("parse %s: %w", format, err)
	}
	normalizeImported(&in)
	if err := Validate(&in); err != nil {
		return RubricInput{}, err
	}
	return in, nil
}

// Imported files often omit weights and the rubric total.
func normalizeImported(in *RubricInput) {
	for i := range in.Categories {
		for j := range in.Categories[i].Criteria {
			if in.Categories[i].Criteria[j].Weight == 0 {
				in.Categories[i].Criteria[j].Weight = 1
			}
		}
	}
	if in.MaxScore == 0 {
		in.MaxScore = criteriaMax(in.Categories)
	}
}

const defaultCriterionMax = 10

// parseRubricCSV reads one criterion per row. The first row also names the
// rubric. Rows go into a single "general" category.
func parseRubricCSV(r io.Reader) (RubricInput, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	hdr, err := cr.Read()
	if err != nil {
		return RubricInput{}, err
	}
	idx := map[string]int{}
	for i, h := range hdr {
		idx[strings.TrimSpace(h)] = i
	}
	for _, k := range []string{"name", "description"} {
		if _, ok := idx[k]; !ok {
			return RubricInput{}, errors.New("CSV must include 'name' and 'description' columns")
		}
	}
	col := func(rec []string, k string) string {
		i, ok := idx[k]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var (
		criteria []Criterion
		name     string
		desc     string
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return RubricInput{}, err
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		i := len(criteria)
		if i == 0 {
			name, desc = col(rec, "name"), col(rec, "description")
		}
		maxScore, err := strconv.Atoi(col(rec, "maxScore"))
		if err != nil || maxScore <= 0 {
			maxScore = defaultCriterionMax
		}
		cname := col(rec, "name")
		if cname == "" {
			cname = fmt.Sprintf("Criterion %d", i+1)
		}
		criteria = append(criteria, Criterion{
			ID:       fmt.Sprintf("criteria-%d", i),
			Name:     cname,
			MaxScore: maxScore,
			Weight:   1,
		})
	}
	if name == "" {
		name = "Imported Rubric"
	}
	if desc == "" {
		desc = "Imported from CSV"
	}
	if criteria == nil {
		criteria = []Criterion{}
	}
	return RubricInput{
		Name:        name,
		Description: &desc,
		Categories: []Category{{
			ID:       "general",
			Name:     "General Criteria",
			Icon:     "clipboard",
			Color:    "#2E86AB",
			Criteria: criteria,
		}},
		MaxScore: criteriaMax([]Category{{Criteria: criteria}}),
	}, nil
}
