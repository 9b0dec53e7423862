// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package bulk defines the wire types of an Elasticsearch bulk request: the
// per-document action metadata, the ordered request accumulator and the
// submission result.
package bulk
