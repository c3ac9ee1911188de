package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"github.com/leowmjw/go-scoreplot/pkg/hcl"
	"github.com/leowmjw/go-scoreplot/pkg/render"
	"github.com/leowmjw/go-scoreplot/pkg/source"
	"github.com/leowmjw/go-scoreplot/pkg/temporal"
)

var submitFlags struct {
	jobPath   string
	address   string
	namespace string
	taskQueue string
}

func init() {
	f := submitCmd.Flags()
	f.StringVarP(&submitFlags.jobPath, "job", "j", "", "HCL or JSON job file, or a directory of HCL files (required)")
	f.StringVar(&submitFlags.address, "address", "localhost:7233", "address of the Temporal server")
	f.StringVar(&submitFlags.namespace, "namespace", "default", "Temporal namespace")
	f.StringVar(&submitFlags.taskQueue, "task-queue", temporal.DefaultTaskQueue, "Temporal task queue")
	_ = submitCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(submitCmd)
}

var submitCmd = &cobra.Command{
	Use:   "submit SCORE",
	Short: "Renders jobs on Temporal workers",
	Long: `Submits the jobs of --job as one render workflow per job, or one batch
workflow when the file holds several, and prints the results as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSubmit(cmd.Context(), args[0])
	},
}

func runSubmit(ctx context.Context, scorePath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger()

	s, err := source.Load(scorePath)
	if err != nil {
		return err
	}
	jobs, err := hcl.LoadJobs(submitFlags.jobPath)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("%w: %s holds no plot jobs", render.ErrUnknownJob, submitFlags.jobPath)
	}

	c, err := client.Dial(client.Options{
		HostPort:  submitFlags.address,
		Namespace: submitFlags.namespace,
	})
	if err != nil {
		return fmt.Errorf("unable to create Temporal client: %w", err)
	}
	defer c.Close()

	if len(jobs) == 1 {
		options := client.StartWorkflowOptions{
			ID:        temporal.GenerateRenderWorkflowID(jobs[0].Name),
			TaskQueue: submitFlags.taskQueue,
		}
		logger.Info("Executing render workflow", "workflowID", options.ID, "job", jobs[0].Name)
		run, err := c.ExecuteWorkflow(ctx, options, temporal.RenderPlotWorkflow, temporal.RenderRequest{Job: jobs[0], Score: s})
		if err != nil {
			return fmt.Errorf("failed to execute render workflow: %w", err)
		}
		var result *render.Result
		if err := run.Get(ctx, &result); err != nil {
			return fmt.Errorf("failed to get render result: %w", err)
		}
		return writeResult(os.Stdout, result)
	}

	options := client.StartWorkflowOptions{
		ID:        temporal.GenerateBatchWorkflowID(),
		TaskQueue: submitFlags.taskQueue,
	}
	logger.Info("Executing batch workflow", "workflowID", options.ID, "jobs", len(jobs))
	run, err := c.ExecuteWorkflow(ctx, options, temporal.RenderBatchWorkflow, temporal.BatchRequest{Jobs: jobs, Score: s})
	if err != nil {
		return fmt.Errorf("failed to execute batch workflow: %w", err)
	}
	var batch *temporal.BatchResult
	if err := run.Get(ctx, &batch); err != nil {
		return fmt.Errorf("failed to get batch result: %w", err)
	}
	for i, result := range batch.Results {
		if result == nil {
			continue
		}
		if err := writeResult(os.Stdout, result); err != nil {
			return err
		}
		logger.Debug("Wrote result", "job", jobs[i].Name)
	}
	for name, msg := range batch.Errors {
		fmt.Fprintf(os.Stderr, "job %s failed: %s\n", name, msg)
	}
	if len(batch.Errors) > 0 {
		return fmt.Errorf("%d of %d jobs failed", len(batch.Errors), len(jobs))
	}
	return nil
}
