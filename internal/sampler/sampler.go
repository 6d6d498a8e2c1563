// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package sampler

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/clarifyctl/clarifyctl/internal/log"
)

// Block is a contiguous run of row indexes, [Start, Start+Len).
type Block struct {
	Start int
	Len   int
}

// DefaultBlocks is the fixed sampling layout: three ten-row blocks at offsets
// 10, 20 and 40. Together with the header row this yields the index set
// {0, 10..19, 20..29, 40..49}.
var DefaultBlocks = []Block{
	{Start: 10, Len: 10},
	{Start: 20, Len: 10},
	{Start: 40, Len: 10},
}

// Sample holds the sampled subset of a validation CSV, split so callers can
// write it with or without the label column.
type Sample struct {
	Header  []string
	Rows    [][]string
	LabelAt int
}

// Indexes expands the blocks into a sorted, de-duplicated index set, always
// including row 0 (the header), clipped to n rows. Indexes past the end of
// the data are skipped, never wrapped.
func Indexes(blocks []Block, n int) []int {
	seen := map[int]bool{}
	if n > 0 {
		seen[0] = true
	}
	for _, b := range blocks {
		for i := b.Start; i < b.Start+b.Len; i++ {
			if i > 0 && i < n {
				seen[i] = true
			}
		}
	}

	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// ParseBlocks parses a --blocks spec of the form "start:len,start:len,...".
func ParseBlocks(spec string) ([]Block, error) {
	if spec == "" {
		return DefaultBlocks, nil
	}

	var blocks []Block
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.SplitN(part, ":", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid block spec %q, want start:len", part)
		}
		start, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil || start < 0 {
			return nil, fmt.Errorf("invalid block start in %q", part)
		}
		length, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil || length <= 0 {
			return nil, fmt.Errorf("invalid block length in %q", part)
		}
		blocks = append(blocks, Block{Start: start, Len: length})
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("empty block spec %q", spec)
	}
	return blocks, nil
}

// Read reads the validation CSV from r and returns the rows selected by the
// blocks. Row 0 is treated as the header. label names the label column; an
// empty label selects the first column.
func Read(r io.Reader, blocks []Block, label string) (*Sample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv is empty")
	}

	header := rows[0]
	labelAt := 0
	if label != "" {
		labelAt = -1
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), label) {
				labelAt = i
				break
			}
		}
		if labelAt == -1 {
			return nil, fmt.Errorf("label column %q not found in header", label)
		}
	}

	indexes := Indexes(blocks, len(rows))
	log.Debugf("sampled indexes: n=%d count=%d", len(rows), len(indexes))

	sample := &Sample{Header: header, LabelAt: labelAt}
	for _, i := range indexes {
		if i == 0 {
			continue
		}
		sample.Rows = append(sample.Rows, rows[i])
	}

	return sample, nil
}

// WriteCSV writes the sample to w. When withLabel is false, the label column
// is dropped from the header and every row; this is the form sent to the
// endpoint and used as the Clarify dataset when the shadow predictor supplies
// the predictions.
func (s *Sample) WriteCSV(w io.Writer, withLabel bool) error {
	writer := csv.NewWriter(w)

	write := func(row []string) error {
		if withLabel {
			return writer.Write(row)
		}
		out := make([]string, 0, len(row)-1)
		for i, v := range row {
			if i == s.LabelAt {
				continue
			}
			out = append(out, v)
		}
		return writer.Write(out)
	}

	if err := write(s.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range s.Rows {
		if err := write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// FeatureRows returns each sampled row as a label-stripped CSV line, the
// payload shape InvokeEndpoint expects for text/csv content.
func (s *Sample) FeatureRows() []string {
	lines := make([]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		out := make([]string, 0, len(row)-1)
		for i, v := range row {
			if i == s.LabelAt {
				continue
			}
			out = append(out, v)
		}
		lines = append(lines, strings.Join(out, ","))
	}
	return lines
}

// FeatureHeader returns the header with the label column removed.
func (s *Sample) FeatureHeader() []string {
	out := make([]string, 0, len(s.Header)-1)
	for i, h := range s.Header {
		if i == s.LabelAt {
			continue
		}
		out = append(out, h)
	}
	return out
}
