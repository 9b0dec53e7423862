// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package mapper builds Elasticsearch bulk actions from decoded change-stream
// records, applying the configured identity, index, type, parent and version
// policies record by record.
package mapper
