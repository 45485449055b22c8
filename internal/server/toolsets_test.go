package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolsets(t *testing.T) {
	tests := []struct {
		in      string
		want    []Toolset
		wantErr bool
	}{
		{in: "", want: AllToolsets},
		{in: "all", want: AllToolsets},
		{in: "booking", want: []Toolset{ToolsetBooking}},
		{in: " Vendor , knowledge,vendor", want: []Toolset{ToolsetVendor, ToolsetKnowledge}},
		{in: "booking,,website", want: []Toolset{ToolsetBooking, ToolsetWebsite}},
		{in: "gmail", wantErr: true},
		{in: ",", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseToolsets(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseToolsets_ReturnsCopy(t *testing.T) {
	got, err := ParseToolsets("all")
	require.NoError(t, err)
	got[0] = "mutated"
	assert.Equal(t, ToolsetBooking, AllToolsets[0])
}
