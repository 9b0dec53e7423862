// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

const (
	runCmdUsage = "run"
	runCmdShort = "start the AWS Lambda entrypoint"
	runCmdLong  = `Start the AWS Lambda entrypoint.
	Every invocation receives one DynamoDB Streams batch, converts it into a
	single Elasticsearch bulk request and delivers it with the configured
	retry policy. The sink mapping is read from the configuration file and
	the Elasticsearch connection from the environment.`

	runCmdExample = `# Start the Lambda runtime loop with a sink configuration
	essink run --sink-file sink.yaml

	# Print the assembled bulk payloads instead of delivering them
	essink run --sink-file sink.yaml --local-output`

	serveCmdUsage = "serve"
	serveCmdShort = "start the HTTP batch ingestion server"
	serveCmdLong  = `Start the HTTP batch ingestion server.
	DynamoDB Streams batches posted to the /batches endpoint are converted
	and delivered exactly like Lambda invocations. Useful as an EventBridge
	pipes target or to replay batches locally.`

	serveCmdExample = `# Start the server with a sink configuration
	essink serve --sink-file sink.yaml`
)

// RunCmd returns the Cobra command that starts the Lambda entrypoint.
func RunCmd() *cobra.Command {
	flags := &flags{}
	cmd := &cobra.Command{
		Use:     runCmdUsage,
		Short:   heredoc.Doc(runCmdShort),
		Long:    heredoc.Doc(runCmdLong),
		Example: heredoc.Doc(runCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.toOptions(cmd)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.executeLambda(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}

// ServeCmd returns the Cobra command that starts the HTTP ingestion server.
func ServeCmd() *cobra.Command {
	flags := &flags{}
	cmd := &cobra.Command{
		Use:     serveCmdUsage,
		Short:   heredoc.Doc(serveCmdShort),
		Long:    heredoc.Doc(serveCmdLong),
		Example: heredoc.Doc(serveCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.toOptions(cmd)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.executeServer(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}
