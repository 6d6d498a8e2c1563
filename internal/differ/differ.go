// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// Diff compares two analysis report documents and prints a colored ascii
// delta. reports[0] is the base run, reports[1] the candidate.
func Diff(cmd *cli.Command, reports [][]byte) error {
	log.Debugf(">> differ()")

	if len(reports[0]) == 0 || len(reports[1]) == 0 {
		return nil
	}

	log.Debugf("len(reports): %d %d", len(reports[0]), len(reports[1]))

	differ := gojsondiff.New()

	delta, err := differ.Compare(reports[0], reports[1])
	if err != nil {
		return fmt.Errorf("failed to compare reports: %w", err)
	}

	if delta.Modified() {
		var jdoc map[string]interface{}
		if err := json.Unmarshal(reports[0], &jdoc); err != nil {
			return fmt.Errorf("failed to unmarshal report: %w", err)
		}

		// Keys listed here carry run metadata (job names, timestamps) that will
		// always differ and would drown the metric changes.
		filter := cmd.String("diff_filter")

		for key := range strings.SplitSeq(filter, ",") {
			if key != "" {
				delete(jdoc, key)
			}
		}

		config := formatter.AsciiFormatterConfig{
			ShowArrayIndex: false,
			Coloring:       true,
		}

		formatter := formatter.NewAsciiFormatter(jdoc, config)
		diffString, err := formatter.Format(delta)
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, diffString)
		return nil
	}

	fmt.Fprintln(os.Stdout, "The reports are identical.")
	return nil
}
