// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/clarifyctl/clarifyctl/internal/cacheutil"
	"github.com/clarifyctl/clarifyctl/internal/log"
)

// Record is one flattened data-capture event: a single request/response pair
// logged by the endpoint infrastructure.
type Record struct {
	Object            string `json:"object"`
	EventID           string `json:"eventId"`
	InferenceTime     string `json:"inferenceTime"`
	Input             string `json:"input"`
	InputContentType  string `json:"inputContentType"`
	Output            string `json:"output"`
	OutputContentType string `json:"outputContentType"`

	// Raw is the capture line exactly as the endpoint wrote it, kept out of
	// the columnar output.
	Raw string `json:"-"`
}

// Object is a capture file in S3.
type Object struct {
	Key          string `json:"key"`
	Size         int64  `json:"size"`
	LastModified string `json:"lastModified"`
}

// captureLine mirrors the JSONL schema the endpoint writes, one document per
// captured invocation.
type captureLine struct {
	CaptureData struct {
		EndpointInput  captureEntry `json:"endpointInput"`
		EndpointOutput captureEntry `json:"endpointOutput"`
	} `json:"captureData"`
	EventMetadata struct {
		EventID       string `json:"eventId"`
		InferenceTime string `json:"inferenceTime"`
	} `json:"eventMetadata"`
	EventVersion string `json:"eventVersion"`
}

type captureEntry struct {
	ObservedContentType string `json:"observedContentType"`
	Mode                string `json:"mode"`
	Data                string `json:"data"`
	Encoding            string `json:"encoding"`
}

// ParseS3URI splits an s3://bucket/prefix URI. The prefix may be empty.
func ParseS3URI(uri string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(uri, "s3://")
	if trimmed == uri || trimmed == "" {
		return "", "", fmt.Errorf("not an s3 uri: %s", uri)
	}
	parts := strings.SplitN(trimmed, "/", 2)
	bucket = parts[0]
	if len(parts) == 2 {
		key = parts[1]
	}
	return bucket, key, nil
}

// Prefix builds the capture key prefix for an endpoint/variant pair beneath
// the capture destination. The infrastructure appends
// <endpoint>/<variant>/YYYY/MM/DD/HH/ below the configured destination.
func Prefix(destPrefix, endpoint, variant string) string {
	p := path.Join(destPrefix, endpoint, variant)
	if p != "" && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// List returns the capture objects under the given bucket/prefix.
func List(ctx context.Context, client *s3v2.Client, bucket, prefix string) ([]Object, error) {
	var objects []Object

	paginator := s3v2.NewListObjectsV2Paginator(client, &s3v2.ListObjectsV2Input{
		Bucket: awsv2.String(bucket),
		Prefix: awsv2.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list capture objects: %w", err)
		}
		for _, obj := range page.Contents {
			key := awsv2.ToString(obj.Key)
			if !strings.HasSuffix(key, ".jsonl") {
				log.Tracef("skipping non-capture object: key=%s", key)
				continue
			}
			o := Object{Key: key, Size: awsv2.ToInt64(obj.Size)}
			if obj.LastModified != nil {
				o.LastModified = obj.LastModified.UTC().Format("2006-01-02T15:04:05Z")
			}
			objects = append(objects, o)
		}
	}

	log.Debugf("capture objects listed: bucket=%s prefix=%s count=%d", bucket, prefix, len(objects))
	return objects, nil
}

// ReadObject fetches one capture object, going through the on-disk cache.
// Capture files are never rewritten once closed, so cache entries are safe
// indefinitely.
func ReadObject(ctx context.Context, client *s3v2.Client, bucket, key string) ([]byte, error) {
	if entry, ok := cacheutil.Read([]string{bucket}, key); ok {
		return entry.Data, nil
	}

	result, err := client.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get capture object %s: %w", key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture object body: %w", err)
	}

	if err := cacheutil.Write([]string{bucket}, key, data); err != nil {
		log.WithError(err).Warnf("failed to cache capture object %s", key)
	}

	return data, nil
}

// DecodeLines flattens the JSONL document body of one capture object into
// records. Malformed lines are skipped with a warning rather than failing the
// whole object.
func DecodeLines(object string, body []byte) []Record {
	var records []Record

	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var doc captureLine
		if err := json.Unmarshal(line, &doc); err != nil {
			log.Warnf("skipping malformed capture line in %s: %v", object, err)
			continue
		}

		records = append(records, Record{
			Raw:               string(line),
			Object:            object,
			EventID:           doc.EventMetadata.EventID,
			InferenceTime:     doc.EventMetadata.InferenceTime,
			Input:             strings.TrimSpace(doc.CaptureData.EndpointInput.Data),
			InputContentType:  doc.CaptureData.EndpointInput.ObservedContentType,
			Output:            strings.TrimSpace(doc.CaptureData.EndpointOutput.Data),
			OutputContentType: doc.CaptureData.EndpointOutput.ObservedContentType,
		})
	}

	return records
}
