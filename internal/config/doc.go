// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package config defines the essink sink configuration surface: the mapping
// policies for document identity, index, type, parent and version, the
// lifecycle hooks, the retry bounds and their validation rules.
package config
