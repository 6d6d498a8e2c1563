// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package capture

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{
			name:       "bucket and prefix",
			uri:        "s3://my-bucket/capture/churn",
			wantBucket: "my-bucket",
			wantKey:    "capture/churn",
		},
		{
			name:       "bucket only",
			uri:        "s3://my-bucket",
			wantBucket: "my-bucket",
			wantKey:    "",
		},
		{
			name:       "trailing slash",
			uri:        "s3://my-bucket/",
			wantBucket: "my-bucket",
			wantKey:    "",
		},
		{
			name:    "not an s3 uri",
			uri:     "https://example.com/foo",
			wantErr: true,
		},
		{
			name:    "empty",
			uri:     "",
			wantErr: true,
		},
		{
			name:    "scheme only",
			uri:     "s3://",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := ParseS3URI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestPrefix(t *testing.T) {
	tests := []struct {
		name     string
		dest     string
		endpoint string
		variant  string
		want     string
	}{
		{
			name:     "simple",
			dest:     "capture",
			endpoint: "churn-predictor",
			variant:  "AllTraffic",
			want:     "capture/churn-predictor/AllTraffic/",
		},
		{
			name:     "nested destination",
			dest:     "clarifyctl/capture",
			endpoint: "churn-predictor",
			variant:  "AllTraffic",
			want:     "clarifyctl/capture/churn-predictor/AllTraffic/",
		},
		{
			name:     "empty destination",
			dest:     "",
			endpoint: "churn-predictor",
			variant:  "AllTraffic",
			want:     "churn-predictor/AllTraffic/",
		},
		{
			name: "all empty",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Prefix(tt.dest, tt.endpoint, tt.variant)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeLines(t *testing.T) {
	body := []byte(`{"captureData":{"endpointInput":{"observedContentType":"text/csv","mode":"INPUT","data":"35,1,12\n","encoding":"CSV"},"endpointOutput":{"observedContentType":"text/csv","mode":"OUTPUT","data":"0.82\n","encoding":"CSV"}},"eventMetadata":{"eventId":"aaaa-1111","inferenceTime":"2026-08-29T14:30:05Z"},"eventVersion":"0"}
{"captureData":{"endpointInput":{"observedContentType":"text/csv","mode":"INPUT","data":"42,0,3\n","encoding":"CSV"},"endpointOutput":{"observedContentType":"text/csv","mode":"OUTPUT","data":"0.11\n","encoding":"CSV"}},"eventMetadata":{"eventId":"bbbb-2222","inferenceTime":"2026-08-29T14:30:06Z"},"eventVersion":"0"}
`)

	records := DecodeLines("2026/08/29/14/capture.jsonl", body)
	require.Len(t, records, 2)

	assert.Equal(t, "2026/08/29/14/capture.jsonl", records[0].Object)
	assert.Equal(t, "aaaa-1111", records[0].EventID)
	assert.Equal(t, "2026-08-29T14:30:05Z", records[0].InferenceTime)
	assert.Equal(t, "35,1,12", records[0].Input)
	assert.Equal(t, "text/csv", records[0].InputContentType)
	assert.Equal(t, "0.82", records[0].Output)
	assert.Equal(t, "text/csv", records[0].OutputContentType)

	assert.Equal(t, "bbbb-2222", records[1].EventID)
	assert.Equal(t, "0.11", records[1].Output)
}

func TestDecodeLinesKeepsRawDocument(t *testing.T) {
	line := `{"captureData":{"endpointInput":{"data":"1,2\n"},"endpointOutput":{"data":"0.5\n"}},"eventMetadata":{"eventId":"dddd-4444","inferenceTime":"2026-08-29T14:30:08Z"}}`

	records := DecodeLines("capture.jsonl", []byte(line+"\n"))
	require.Len(t, records, 1)
	assert.Equal(t, line, records[0].Raw)

	// Raw never leaks into the columnar output.
	data, err := json.Marshal(records[0])
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Raw")
	assert.NotContains(t, string(data), "captureData")
}

func TestDecodeLinesSkipsMalformed(t *testing.T) {
	body := []byte(`not json at all
{"captureData":{"endpointInput":{"data":"1,2\n"},"endpointOutput":{"data":"0.5\n"}},"eventMetadata":{"eventId":"cccc-3333","inferenceTime":"2026-08-29T14:30:07Z"}}
{broken
`)

	records := DecodeLines("capture.jsonl", body)
	require.Len(t, records, 1)
	assert.Equal(t, "cccc-3333", records[0].EventID)
}

func TestDecodeLinesSkipsBlankLines(t *testing.T) {
	body := []byte("\n\n  \n")

	records := DecodeLines("capture.jsonl", body)
	assert.Empty(t, records)
}

func TestDecodeLinesEmptyBody(t *testing.T) {
	records := DecodeLines("capture.jsonl", nil)
	assert.Empty(t, records)
}
