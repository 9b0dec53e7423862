// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package logger provides the structured JSON logger used across essink and
// the helpers to carry it through a context.Context.
package logger
