package ctlclient

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	pkgstrings "ignition/pkg/strings"
)

// newTable returns a table.Writer configured with the rounded style used
// across ignitionctl's output.
func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	return t
}

// statusText color-codes a task status for terminal display.
func statusText(status string) string {
	switch status {
	case "COMPLETE":
		return text.Colors{text.FgHiGreen, text.Bold}.Sprint(status)
	case "FAILED":
		return text.Colors{text.FgHiRed, text.Bold}.Sprint(status)
	case "IN_PROGRESS":
		return text.Colors{text.FgHiYellow, text.Bold}.Sprint(status)
	default:
		return status
	}
}

// PrintTask renders a get_infrastructure_task response as a table.
func PrintTask(resp map[string]interface{}) {
	t := newTable()
	t.AppendHeader(table.Row{"FIELD", "VALUE"})
	t.AppendRow(table.Row{"Infrastructure ID", resp["infrastructureId"]})
	t.AppendRow(table.Row{"Request ID", resp["requestId"]})
	if status, ok := resp["status"].(string); ok {
		t.AppendRow(table.Row{"Status", statusText(status)})
	}
	if outputs, ok := resp["outputs"]; ok {
		t.AppendRow(table.Row{"Outputs", outputs})
	}
	if failureDetails, ok := resp["failureDetails"].(map[string]interface{}); ok {
		t.AppendRow(table.Row{"Failure Code", failureDetails["failureCode"]})
		description := fmt.Sprintf("%v", failureDetails["description"])
		t.AppendRow(table.Row{"Failure Description", pkgstrings.TruncateDescription(description, pkgstrings.DefaultDescriptionMaxLen)})
	}
	t.Render()
}

// PrintCreateOrDelete renders a create/delete response as a table.
func PrintCreateOrDelete(resp map[string]interface{}) {
	t := newTable()
	t.AppendHeader(table.Row{"FIELD", "VALUE"})
	t.AppendRow(table.Row{"Infrastructure ID", resp["infrastructureId"]})
	t.AppendRow(table.Row{"Request ID", resp["requestId"]})
	t.Render()
}

// PrintFindResult renders a find_infrastructure response as a table.
func PrintFindResult(resp map[string]interface{}) {
	t := newTable()
	result, ok := resp["result"].(map[string]interface{})
	if !ok || result == nil {
		t.AppendHeader(table.Row{"RESULT"})
		t.AppendRow(table.Row{"no match found"})
		t.Render()
		return
	}
	t.AppendHeader(table.Row{"FIELD", "VALUE"})
	t.AppendRow(table.Row{"Infrastructure ID", result["infrastructureId"]})
	t.AppendRow(table.Row{"Outputs", result["outputs"]})
	t.Render()
}
