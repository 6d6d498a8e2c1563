// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func datasetCommand(dataset, datasetURI, headers string) *cli.Command {
	return &cli.Command{
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dataset", Value: dataset},
			&cli.StringFlag{Name: "dataset-uri", Value: datasetURI},
			&cli.StringFlag{Name: "headers", Value: headers},
			&cli.StringFlag{Name: "label", Value: ""},
		},
	}
}

func TestLoadDatasetFromFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "validation-sample.csv")
	require.NoError(t, os.WriteFile(file, []byte("churn,age,tenure\n1,35,12\n0,42,3\n"), 0o644))

	ds, err := loadDataset(datasetCommand(file, "", ""))
	require.NoError(t, err)

	assert.Empty(t, ds.uri)
	assert.Equal(t, []string{"churn", "age", "tenure"}, ds.headers)
	require.Len(t, ds.rows, 2)
	assert.Equal(t, "1,35,12", ds.rows[0])
	assert.Equal(t, "0,42,3", ds.rows[1])
}

func TestLoadDatasetSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "validation-sample.csv")
	require.NoError(t, os.WriteFile(file, []byte("churn,age\n\n1,35\n\n"), 0o644))

	ds, err := loadDataset(datasetCommand(file, "", ""))
	require.NoError(t, err)
	assert.Len(t, ds.rows, 1)
}

func TestLoadDatasetHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "validation-sample.csv")
	require.NoError(t, os.WriteFile(file, []byte("churn,age\n"), 0o644))

	_, err := loadDataset(datasetCommand(file, "", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data rows")
}

func TestLoadDatasetMissingFile(t *testing.T) {
	_, err := loadDataset(datasetCommand("/nonexistent/validation.csv", "", ""))
	assert.Error(t, err)
}

func TestLoadDatasetFromURI(t *testing.T) {
	ds, err := loadDataset(datasetCommand("", "s3://bucket/data/validation.csv", "churn, age ,tenure"))
	require.NoError(t, err)

	assert.Equal(t, "s3://bucket/data/validation.csv", ds.uri)
	assert.Equal(t, []string{"churn", "age", "tenure"}, ds.headers)
	assert.Empty(t, ds.rows)
}

func TestLoadDatasetURIRequiresHeaders(t *testing.T) {
	_, err := loadDataset(datasetCommand("", "s3://bucket/data/validation.csv", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--headers")
}

func TestLabelColumn(t *testing.T) {
	ds := &jobDataset{headers: []string{"churn", "age"}}

	cmd := datasetCommand("", "", "")
	assert.Equal(t, "churn", labelColumn(cmd, ds))

	cmd = &cli.Command{
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "label", Value: "age"},
		},
	}
	assert.Equal(t, "age", labelColumn(cmd, ds))

	assert.Equal(t, "", labelColumn(datasetCommand("", "", ""), &jobDataset{}))
}

func TestBaselineFromDataset(t *testing.T) {
	ds := &jobDataset{
		headers: []string{"churn", "age", "tenure"},
		rows:    []string{"1,35,12", "0,42,3"},
	}

	baseline, err := baselineFromDataset(ds, "churn")
	require.NoError(t, err)
	assert.Equal(t, []float64{35, 12}, baseline)
}

func TestBaselineFromDatasetLabelCaseInsensitive(t *testing.T) {
	ds := &jobDataset{
		headers: []string{"Churn", "age"},
		rows:    []string{"1,35"},
	}

	baseline, err := baselineFromDataset(ds, "churn")
	require.NoError(t, err)
	assert.Equal(t, []float64{35}, baseline)
}

func TestBaselineFromDatasetLabelNotFirst(t *testing.T) {
	ds := &jobDataset{
		headers: []string{"age", "churn", "tenure"},
		rows:    []string{"35,1,12"},
	}

	baseline, err := baselineFromDataset(ds, "churn")
	require.NoError(t, err)
	assert.Equal(t, []float64{35, 12}, baseline)
}

func TestBaselineFromDatasetNoRows(t *testing.T) {
	ds := &jobDataset{headers: []string{"churn", "age"}}

	_, err := baselineFromDataset(ds, "churn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--baseline")
}

func TestJobResources(t *testing.T) {
	cmd := &cli.Command{
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "instance-count", Value: 2},
			&cli.IntFlag{Name: "volume", Value: 50},
			&cli.DurationFlag{Name: "max-runtime", Value: 90 * time.Minute},
		},
	}

	count, volume, runtime := jobResources(cmd)
	assert.Equal(t, int32(2), count)
	assert.Equal(t, int32(50), volume)
	assert.Equal(t, int32(5400), runtime)
}

func TestBaselineFromDatasetNonNumeric(t *testing.T) {
	ds := &jobDataset{
		headers: []string{"churn", "age", "plan"},
		rows:    []string{"1,35,premium"},
	}

	_, err := baselineFromDataset(ds, "churn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--baseline")
}
