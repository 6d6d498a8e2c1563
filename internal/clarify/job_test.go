// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package clarify

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobName(t *testing.T) {
	now := time.Date(2026, 8, 29, 14, 30, 5, 0, time.UTC)

	got := JobName("clarify-bias", now)
	assert.Equal(t, "clarify-bias-2026-08-29-14-30-05", got)
}

func TestJobNameConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	now := time.Date(2026, 8, 29, 9, 30, 5, 0, loc)

	got := JobName("clarify-explain", now)
	assert.Equal(t, "clarify-explain-2026-08-29-14-30-05", got)
}

func TestImageURI(t *testing.T) {
	uri, err := ImageURI("us-east-1")
	require.NoError(t, err)
	assert.Equal(t,
		"205585389593.dkr.ecr.us-east-1.amazonaws.com/sagemaker-clarify-processing:1.0",
		uri)
}

func TestImageURIUnknownRegion(t *testing.T) {
	_, err := ImageURI("xx-nowhere-9")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "xx-nowhere-9")
}

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		name  string
		state types.ProcessingJobStatus
		want  bool
	}{
		{
			name:  "completed",
			state: types.ProcessingJobStatusCompleted,
			want:  true,
		},
		{
			name:  "failed",
			state: types.ProcessingJobStatusFailed,
			want:  true,
		},
		{
			name:  "stopped",
			state: types.ProcessingJobStatusStopped,
			want:  true,
		},
		{
			name:  "in progress",
			state: types.ProcessingJobStatusInProgress,
			want:  false,
		},
		{
			name:  "stopping",
			state: types.ProcessingJobStatusStopping,
			want:  false,
		},
		{
			name:  "zero value",
			state: "",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Status{Name: "clarify-bias-x", State: tt.state}
			assert.Equal(t, tt.want, s.Terminal())
		})
	}
}
