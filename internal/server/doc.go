// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package server exposes the HTTP endpoint that accepts posted change-stream
// batches, for EventBridge pipes targets and local batch replay.
package server
