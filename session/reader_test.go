package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanSegments(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		counter  int
		index    int
		want     []Segment
	}{
		{
			name:     "never written",
			capacity: 100,
			counter:  0,
			index:    0,
			want:     nil,
		},
		{
			name:     "zero capacity",
			capacity: 0,
			counter:  10,
			index:    0,
			want:     nil,
		},
		{
			name:     "partial fill",
			capacity: 100,
			counter:  37,
			index:    37,
			want:     []Segment{{Offset: 0, Count: 37}},
		},
		{
			name:     "wrapped",
			capacity: 100,
			counter:  137,
			index:    37,
			want:     []Segment{{Offset: 37, Count: 63}, {Offset: 0, Count: 37}},
		},
		{
			name:     "wrapped at index zero",
			capacity: 100,
			counter:  200,
			index:    0,
			want:     []Segment{{Offset: 0, Count: 100}},
		},
		{
			name:     "small wrapped",
			capacity: 4,
			counter:  6,
			index:    2,
			want:     []Segment{{Offset: 2, Count: 2}, {Offset: 0, Count: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanSegments(tt.capacity, tt.counter, tt.index)
			require.Equal(t, tt.want, got)

			total := 0
			for _, seg := range got {
				total += seg.Count
				require.Positive(t, seg.Count)
				require.GreaterOrEqual(t, seg.Offset, 0)
				require.LessOrEqual(t, seg.Offset+seg.Count, tt.capacity)
			}
			if tt.counter > tt.capacity {
				require.Equal(t, tt.capacity, total)
			}
		})
	}
}
