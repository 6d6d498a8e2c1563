// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package driller extracts values from JSON result documents using dot paths
// with optional array indexing.
package driller
