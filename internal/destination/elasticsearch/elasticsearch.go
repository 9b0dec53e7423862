// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/caarlos0/env/v11"
	elastic "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/mia-platform/essink/internal/bulk"
	"github.com/mia-platform/essink/internal/destination"
	"github.com/mia-platform/essink/internal/info"
)

var _ destination.BulkSubmitter = &elasticsearchDestination{}

// clientConfig is the environment configuration of the Elasticsearch client.
type clientConfig struct {
	Addresses []string `env:"ES_ADDRESSES,required" envSeparator:","`
	Username  string   `env:"ES_USERNAME"`
	Password  string   `env:"ES_PASSWORD"`
	APIKey    string   `env:"ES_API_KEY"`
	CloudID   string   `env:"ES_CLOUD_ID"`
}

// elasticsearchDestination implements destination.BulkSubmitter on top of the
// official Elasticsearch bulk API.
type elasticsearchDestination struct {
	client *elastic.Client
}

// NewDestination returns a destination.BulkSubmitter connected to the
// Elasticsearch cluster configured through environment variables.
func NewDestination() (destination.BulkSubmitter, error) {
	cfg := new(clientConfig)
	if err := env.Parse(cfg); err != nil {
		return nil, handleError(err)
	}

	client, err := elastic.NewClient(elastic.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		APIKey:    cfg.APIKey,
		CloudID:   cfg.CloudID,
	})
	if err != nil {
		return nil, handleError(err)
	}

	return &elasticsearchDestination{client: client}, nil
}

// NewDestinationWithClient wraps an already configured Elasticsearch client.
func NewDestinationWithClient(client *elastic.Client) destination.BulkSubmitter {
	return &elasticsearchDestination{client: client}
}

// SubmitBulk implements destination.BulkSubmitter.
func (d *elasticsearchDestination) SubmitBulk(ctx context.Context, request *bulk.Request, params map[string]string) (*bulk.Result, error) {
	body := new(bytes.Buffer)
	if err := request.EncodeNDJSON(body); err != nil {
		return nil, handleError(err)
	}

	bulkRequest := esapi.BulkRequest{Body: body}
	bulkRequest.Header = map[string][]string{"User-Agent": {userAgentString()}}
	if err := applyParams(&bulkRequest, params); err != nil {
		return nil, handleError(err)
	}

	response, err := bulkRequest.Do(ctx, d.client)
	if err != nil {
		return nil, handleError(err)
	}
	defer response.Body.Close()

	if response.IsError() {
		message, _ := io.ReadAll(response.Body)
		return nil, handleError(fmt.Errorf("bulk request failed with status %s: %s", response.Status(), message))
	}

	result := new(bulk.Result)
	if err := json.NewDecoder(response.Body).Decode(result); err != nil {
		return nil, handleError(err)
	}

	return result, nil
}

// applyParams maps the configured extra bulk options onto the request.
// Unrecognized options are rejected instead of being silently dropped.
func applyParams(request *esapi.BulkRequest, params map[string]string) error {
	for name, value := range params {
		switch name {
		case "index":
			request.Index = value
		case "pipeline":
			request.Pipeline = value
		case "refresh":
			request.Refresh = value
		case "routing":
			request.Routing = value
		case "timeout":
			timeout, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid bulk timeout %q: %w", value, err)
			}
			request.Timeout = timeout
		case "wait_for_active_shards":
			request.WaitForActiveShards = value
		default:
			return fmt.Errorf("unsupported bulk option %q", name)
		}
	}

	return nil
}

func userAgentString() string {
	return info.AppName + "/" + info.Version
}

func handleError(err error) error {
	var parseErr env.AggregateError
	if errors.As(err, &parseErr) {
		err = parseErr.Errors[0]
	}

	return &DeliveryError{err: err}
}
