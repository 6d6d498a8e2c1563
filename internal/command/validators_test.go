// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputValidator(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		wantErr bool
	}{
		{name: "text", value: "text"},
		{name: "json", value: "json"},
		{name: "raw", value: "raw"},
		{name: "yaml", value: "yaml"},
		{name: "invalid", value: "xml", wantErr: true},
		{name: "empty", value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := OutputValidator(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBlocksValidator(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		wantErr bool
	}{
		{name: "empty is allowed", value: ""},
		{name: "single block", value: "0:1"},
		{name: "multiple blocks", value: "0:1,10:10,20:10,40:10"},
		{name: "not a string", value: 42, wantErr: true},
		{name: "missing length", value: "0", wantErr: true},
		{name: "non numeric", value: "a:b", wantErr: true},
		{name: "negative start", value: "-1:5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := BlocksValidator(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFlagValidators(t *testing.T) {
	pass := func(any) error { return nil }
	fail := func(any) error { return errors.New("nope") }

	assert.NoError(t, FlagValidators("x", pass, pass))
	assert.Error(t, FlagValidators("x", pass, fail))
	assert.NoError(t, FlagValidators("x"))
}
