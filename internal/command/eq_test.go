// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/clarifyctl/clarifyctl/internal/discover"
)

// Every describe attr must name a real Endpoint field, or the resolved view
// renders empty columns.
func TestEqDescribeAttrsMatchEndpointFields(t *testing.T) {
	typ := reflect.TypeOf(discover.Endpoint{})

	for _, spec := range eqDescribeAttrs {
		key := strings.Split(strings.TrimPrefix(spec, "."), ":")[0]
		_, found := typ.FieldByName(key)
		assert.True(t, found, "attr %q names no Endpoint field", key)
	}
}

func TestEqDescribeAttrsBuild(t *testing.T) {
	cmd := &cli.Command{
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "attrs", Value: ""},
		},
	}

	al := BuildAttrs(cmd, eqDescribeAttrs...)
	require.Len(t, al, len(eqDescribeAttrs))
	assert.Equal(t, "name", al[0].OutputKey)
	assert.Equal(t, "model", al[4].OutputKey)
}
