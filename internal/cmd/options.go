// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"github.com/mia-platform/essink/internal/config"
	"github.com/mia-platform/essink/internal/destination"
	"github.com/mia-platform/essink/internal/destination/elasticsearch"
	"github.com/mia-platform/essink/internal/destination/writer"
	"github.com/mia-platform/essink/internal/pipeline"
	"github.com/mia-platform/essink/internal/server"
)

const (
	sinkFileFlagName  = "sink-file"
	sinkFileFlagShort = "f"
	sinkFileFlagUsage = "Path to the YAML file containing the sink mapping configuration."

	localOutputFlagName  = "local-output"
	localOutputFlagUsage = "If set, writes the bulk payloads to stdout instead of sending them to Elasticsearch"
	defaultLocalOutput   = false
)

// flags holds the cli flags shared by the run and serve commands.
type flags struct {
	sinkFile    string
	localOutput bool
}

// addFlags adds the cli flags to the cobra command.
func (f *flags) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.sinkFile, sinkFileFlagName, sinkFileFlagShort, "", sinkFileFlagUsage)
	cmd.Flags().BoolVar(&f.localOutput, localOutputFlagName, defaultLocalOutput, localOutputFlagUsage)
}

// toOptions loads the sink configuration referenced by the flags and attaches
// the delivery client to it.
func (f *flags) toOptions(cmd *cobra.Command) (*options, error) {
	if f.sinkFile == "" {
		return nil, errNoSinkFile
	}

	sinkOptions, err := config.NewOptionsFromPath(f.sinkFile)
	if err != nil {
		return nil, err
	}

	var client destination.BulkSubmitter
	if f.localOutput {
		client = writer.NewDestination(cmd.OutOrStdout())
	} else {
		client, err = elasticsearch.NewDestination()
		if err != nil {
			return nil, err
		}
	}
	sinkOptions.Elasticsearch.Client = client

	return &options{sinkOptions: sinkOptions}, nil
}

// options holds the configuration resolved for the current command.
type options struct {
	sinkOptions *config.Options
}

// executeLambda hands the pipeline handler over to the Lambda runtime. The
// call blocks for the lifetime of the runtime loop.
func (o *options) executeLambda(ctx context.Context) error {
	sink, err := pipeline.New(o.sinkOptions)
	if err != nil {
		return err
	}

	lambda.StartWithOptions(sink.Handle, lambda.WithContext(ctx))
	return nil
}

// executeServer runs the HTTP ingestion server until the context is
// cancelled or a termination signal arrives.
func (o *options) executeServer(ctx context.Context) error {
	sink, err := pipeline.New(o.sinkOptions)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(ctx, sink.Handle)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		_ = srv.Stop()
	}()

	return srv.Start()
}
