package assessment

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		ct, name, head string
		want           ImportFormat
		err            bool
	}{
		{ct: "application/json", want: FormatJSON},
		{ct: "text/csv; charset=utf-8", want: FormatCSV},
		{ct: "application/x-yaml", want: FormatYAML},
		{ct: "application/octet-stream", name: "rubric.yml", want: FormatYAML},
		{name: "RUBRIC.CSV", want: FormatCSV},
		{head: "  {\"name\":1}", want: FormatJSON},
		{ct: "image/png", name: "x.png", head: "\x89PNG", err: true},
	}
	for _, tc := range cases {
		got, err := DetectFormat(tc.ct, tc.name, []byte(tc.head))
		if tc.err {
			assert.True(t, errors.Is(err, ErrUnsupportedFormat))
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%q %q", tc.ct, tc.name)
	}
}

func TestParseRubricCSV(t *testing.T) {
	src := "name,description,maxScore\n" +
		"System Design,Architecture interview,20\n" +
		"Debugging,,\n" +
		"\n" +
		",,5\n"
	in, err := ParseRubric(FormatCSV, strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, "System Design", in.Name)
	require.NotNil(t, in.Description)
	assert.Equal(t, "Architecture interview", *in.Description)
	require.Len(t, in.Categories, 1)
	cat := in.Categories[0]
	assert.Equal(t, "general", cat.ID)
	require.Len(t, cat.Criteria, 3)
	assert.Equal(t, Criterion{ID: "criteria-0", Name: "System Design", MaxScore: 20, Weight: 1}, cat.Criteria[0])
	assert.Equal(t, Criterion{ID: "criteria-1", Name: "Debugging", MaxScore: 10, Weight: 1}, cat.Criteria[1])
	assert.Equal(t, Criterion{ID: "criteria-2", Name: "Criterion 3", MaxScore: 5, Weight: 1}, cat.Criteria[2])
	assert.Equal(t, 35, in.MaxScore)
}

func TestParseRubricCSVMissingColumns(t *testing.T) {
	_, err := ParseRubric(FormatCSV, strings.NewReader("title,maxScore\nx,10\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'name' and 'description'")
}

func TestParseRubricJSON(t *testing.T) {
	src := `{"name":"Tech","categories":[{"id":"c","name":"Coding","criteria":[
		{"id":"a","name":"A","maxScore":10},
		{"id":"b","name":"B","maxScore":5,"weight":2}]}]}`
	in, err := ParseRubric(FormatJSON, strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 15, in.MaxScore)
	assert.Equal(t, 1.0, in.Categories[0].Criteria[0].Weight, "missing weight defaults to 1")
	assert.Equal(t, 2.0, in.Categories[0].Criteria[1].Weight)
}

func TestParseRubricYAML(t *testing.T) {
	src := `
name: Behavior
description: Soft skills
maxScore: 30
categories:
  - id: teamwork
    name: Teamwork
    icon: users
    color: "#2E86AB"
    criteria:
      - {id: collaboration, name: Collaboration, maxScore: 10, weight: 1}
      - {id: leadership, name: Leadership, maxScore: 10, weight: 1}
`
	in, err := ParseRubric(FormatYAML, strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "Behavior", in.Name)
	assert.Equal(t, 30, in.MaxScore)
	assert.Equal(t, "#2E86AB", in.Categories[0].Color)
	assert.Len(t, in.Categories[0].Criteria, 2)
}

func TestParseRubricInvalid(t *testing.T) {
	var ve *ValidationError
	_, err := ParseRubric(FormatJSON, strings.NewReader(`{"name":"","categories":[]}`))
	assert.True(t, errors.As(err, &ve))

	_, err = ParseRubric(FormatJSON, strings.NewReader(`{"name":"dup","categories":[{"id":"c","name":"C","criteria":[
		{"id":"a","name":"A","maxScore":1},{"id":"a","name":"A2","maxScore":1}]}]}`))
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Error(), "duplicate criterion id a")

	_, err = ParseRubric(FormatJSON, strings.NewReader(`{`))
	assert.Error(t, err)
}
