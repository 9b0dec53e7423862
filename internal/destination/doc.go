// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package destination defines the contract implemented by essink bulk
// destinations, so the pipeline can deliver to Elasticsearch, to a local
// writer or to a test double through the same interface.
package destination
