// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters parses --filter expressions and applies them to result
// datasets. Keys prefixed with _ are server-side filters handled by the AWS
// list APIs and skipped here.
package filters
