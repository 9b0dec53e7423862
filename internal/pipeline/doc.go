// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package pipeline coordinates the delivery of one change-stream batch:
// validation, batch assembly, bulk submission with bounded retry and
// lifecycle hook dispatch.
package pipeline
