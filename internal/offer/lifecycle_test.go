package offer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	cases := []struct {
		name string
		o    Offer
		want State
	}{
		{
			name: "running window is active",
			o:    Offer{IsActive: true, StartDate: past, EndDate: &future},
			want: StateActive,
		},
		{
			name: "open ended window is active",
			o:    Offer{IsActive: true, StartDate: past},
			want: StateActive,
		},
		{
			name: "unstarted window is upcoming",
			o:    Offer{IsActive: true, StartDate: future},
			want: StateUpcoming,
		},
		{
			name: "elapsed end date is expired",
			o:    Offer{IsActive: true, StartDate: past, EndDate: &past},
			want: StateExpired,
		},
		{
			name: "disabled beats an unstarted window",
			o:    Offer{IsActive: false, StartDate: future},
			want: StateExpired,
		},
		{
			name: "elapsed end beats an unstarted start",
			o:    Offer{IsActive: true, StartDate: future, EndDate: &past},
			want: StateExpired,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Classify(tc.o, now))
		})
	}
}

func TestParseState(t *testing.T) {
	t.Parallel()

	got, err := ParseState(" Active ")
	require.NoError(t, err)
	require.Equal(t, StateActive, got)

	_, err = ParseState("paused")
	require.Error(t, err)
}
