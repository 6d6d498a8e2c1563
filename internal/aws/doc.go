// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package aws contains AWS SDK helpers and client constructors used by
// commands that interact with SageMaker, S3, and STS.
package aws
