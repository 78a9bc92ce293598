package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewWorkflowCmd создаёт группу команд для управления workflow.
func NewWorkflowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Manage workflows",
	}

	cmd.AddCommand(
		newWorkflowLoadCmd(clientFn, outputFn),
		newWorkflowListCmd(clientFn, outputFn),
		newWorkflowShowCmd(clientFn, outputFn),
		newWorkflowDeleteCmd(clientFn, outputFn),
		newWorkflowExecuteCmd(clientFn, outputFn),
		newWorkflowDiagramCmd(clientFn, outputFn),
	)

	return cmd
}

func newWorkflowLoadCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a workflow from a config file on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			resp, err := client.LoadWorkflow(configPath)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Workflow loaded: %s", resp.WorkflowID))
			out.Print(
				[]string{"WORKFLOW_ID", "STATUS"},
				[][]string{{resp.WorkflowID, resp.Status}},
				resp,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to YAML/JSON workflow config (required)")
	cmd.MarkFlagRequired("config")

	return cmd
}

func newWorkflowListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List loaded workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			workflows, err := client.ListWorkflows()
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "NODES"}
			rows := make([][]string, len(workflows))
			for i, wf := range workflows {
				rows[i] = []string{wf.ID, wf.Name, strconv.Itoa(wf.NodeCount)}
			}

			out.Print(headers, rows, workflows)
			return nil
		},
	}
}

func newWorkflowShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show the full workflow spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			spec, err := client.GetWorkflow(args[0])
			if err != nil {
				return err
			}

			var pretty any
			if err := json.Unmarshal(spec, &pretty); err != nil {
				return fmt.Errorf("failed to decode spec: %w", err)
			}
			out.JSON(pretty)
			return nil
		},
	}
}

func newWorkflowDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Unload a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteWorkflow(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Workflow deleted: %s", args[0]))
			return nil
		},
	}
}

func newWorkflowExecuteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var inputsJSON string

	cmd := &cobra.Command{
		Use:   "execute ID",
		Short: "Execute a workflow and stream events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			var inputs map[string]any
			if inputsJSON != "" {
				if err := json.Unmarshal([]byte(inputsJSON), &inputs); err != nil {
					return fmt.Errorf("invalid --inputs JSON: %w", err)
				}
			}

			return client.Execute(args[0], inputs, func(ev Event) {
				if ev.Error != "" {
					out.Error(fmt.Sprintf("node %s: %s", ev.NodeID, ev.Error))
					return
				}
				out.Event(ev)
			})
		},
	}

	cmd.Flags().StringVar(&inputsJSON, "inputs", "", "Initial inputs as a JSON object")

	return cmd
}

func newWorkflowDiagramCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var htmlOut string

	cmd := &cobra.Command{
		Use:   "diagram ID",
		Short: "Print the Mermaid diagram of a loaded workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if htmlOut != "" {
				html, err := client.WorkflowDiagramHTML(args[0])
				if err != nil {
					return err
				}
				if err := os.WriteFile(htmlOut, []byte(html), 0o644); err != nil {
					return fmt.Errorf("write html: %w", err)
				}
				out.Success(fmt.Sprintf("Diagram written to %s", htmlOut))
				return nil
			}

			mermaid, err := client.WorkflowDiagramMermaid(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, mermaid)
			return nil
		},
	}

	cmd.Flags().StringVar(&htmlOut, "html", "", "Write an HTML viewer page to this file instead")

	return cmd
}
