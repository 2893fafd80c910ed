package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDense(t *testing.T) {
	assert.True(t, isDense("a,b,c,d"))
	assert.True(t, isDense("a\tb\tc\td"))
	assert.False(t, isDense("a,b,c"))
	assert.False(t, isDense("a, b\tc\td"))
	assert.False(t, isDense("plain text"))
}

func TestFindRuns(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  [][]string
	}{
		{
			name:  "no dense lines",
			lines: []string{"intro", "", "more prose, with a comma"},
			want:  nil,
		},
		{
			name:  "single run ended by blank line",
			lines: []string{"intro", "a,b,c,d", "1,2,3,4", "", "outro"},
			want:  [][]string{{"a,b,c,d", "1,2,3,4"}},
		},
		{
			name:  "unterminated run ends at end of input",
			lines: []string{"a,b,c,d", "1,2,3,4", "5,6,7,8"},
			want:  [][]string{{"a,b,c,d", "1,2,3,4", "5,6,7,8"}},
		},
		{
			name:  "adjacent dense lines merge into one run",
			lines: []string{"a,b,c,d", "1,2,3,4", "w,x,y,z", "5,6,7,8", ""},
			want:  [][]string{{"a,b,c,d", "1,2,3,4", "w,x,y,z", "5,6,7,8"}},
		},
		{
			name:  "sparse lines continue an open run",
			lines: []string{"a,b,c,d", "note", "1,2,3,4", "   "},
			want:  [][]string{{"a,b,c,d", "note", "1,2,3,4"}},
		},
		{
			name:  "runs separated by blank line",
			lines: []string{"a,b,c,d", "1,2,3,4", "", "w\tx\ty\tz", "5\t6\t7\t8"},
			want:  [][]string{{"a,b,c,d", "1,2,3,4"}, {"w\tx\ty\tz", "5\t6\t7\t8"}},
		},
		{
			name:  "single line runs are dropped",
			lines: []string{"a,b,c,d", "", "w,x,y,z"},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findRuns(tt.lines))
		})
	}
}
