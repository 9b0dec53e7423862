// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrParsing reports failures that occur while decoding sink option files.
var ErrParsing = errors.New("error parsing")

// NewOptionsFromPath parses the sink options file at path. Only the data
// options can be expressed in YAML; hooks, resolvers and the delivery client
// must be attached by the caller before validation.
func NewOptionsFromPath(path string) (*Options, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	options := new(Options)
	if err := decoder.Decode(options); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrParsing, path, err)
	}

	return options, nil
}
