package nan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeConfigRequests(t *testing.T) {
	tests := []struct {
		name     string
		requests []ConfigRequest
		expected ConfigRequest
	}{
		{
			name:     "single request is returned unchanged",
			requests: []ConfigRequest{{ClusterLow: 5, ClusterHigh: 100, MasterPreference: 111}},
			expected: ConfigRequest{ClusterLow: 5, ClusterHigh: 100, MasterPreference: 111},
		},
		{
			name: "fields combine OR max min max",
			requests: []ConfigRequest{
				{ClusterLow: 5, ClusterHigh: 100, MasterPreference: 111},
				{ClusterLow: 7, ClusterHigh: 155, Support5GBand: true},
			},
			expected: ConfigRequest{ClusterLow: 5, ClusterHigh: 155, MasterPreference: 111, Support5GBand: true},
		},
		{
			name: "default cluster range does not shrink the envelope",
			requests: []ConfigRequest{
				{ClusterLow: 5, ClusterHigh: 100, MasterPreference: 111},
				{ClusterLow: 7, ClusterHigh: 155, Support5GBand: true},
				{},
			},
			expected: ConfigRequest{ClusterLow: 5, ClusterHigh: 155, MasterPreference: 111, Support5GBand: true},
		},
		{
			name:     "all-default requests merge to the default",
			requests: []ConfigRequest{{}, {}},
			expected: ConfigRequest{},
		},
		{
			name: "identity change opt-in is ORed",
			requests: []ConfigRequest{
				{IdentityChangeEnabled: true},
				{MasterPreference: 5},
			},
			expected: ConfigRequest{IdentityChangeEnabled: true, MasterPreference: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MergeConfigRequests(tt.requests))
		})
	}
}
