package labelpress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLabels(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"go", []string{"go"}},
		{"go_sql_web", []string{"go", "sql", "web"}},
		{"_go__ sql _", []string{"go", "sql"}},
		{"c sharp_go", []string{"c sharp", "go"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitLabels(tt.in), tt.in)
	}
}

func TestPageNumber(t *testing.T) {
	n, err := pageNumber("")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = pageNumber("3")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = pageNumber("three")
	assert.Error(t, err)
}
