// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package source normalizes raw DynamoDB Streams records into plain nested
// values and resolves field paths against the decoded key and image views.
package source
