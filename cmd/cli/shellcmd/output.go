package shellcmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/cmdrun/internal/execshell"
)

// Output formats accepted by --output.
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

const (
	unsupportedOutputFormatTemplateConstant = "unsupported output format: %s"
	jsonIndentConstant                      = "  "
	yamlIndentConstant                      = 2
)

// OutputFormats lists the formats accepted by --output.
func OutputFormats() []string {
	return []string{OutputFormatText, OutputFormatJSON, OutputFormatYAML}
}

// outcomeRenderer writes command outcomes in the selected format.
type outcomeRenderer struct {
	format         string
	standardOutput io.Writer
	standardError  io.Writer
}

// render writes textOutput and textError verbatim in text format; document is encoded otherwise.
func (renderer outcomeRenderer) render(document any, textOutput string, textError string) error {
	switch strings.ToLower(strings.TrimSpace(renderer.format)) {
	case OutputFormatText, "":
		if _, writeError := io.WriteString(renderer.standardOutput, textOutput); writeError != nil {
			return writeError
		}
		_, writeError := io.WriteString(renderer.standardError, textError)
		return writeError
	case OutputFormatJSON:
		encoder := json.NewEncoder(renderer.standardOutput)
		encoder.SetIndent("", jsonIndentConstant)
		return encoder.Encode(document)
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(renderer.standardOutput)
		encoder.SetIndent(yamlIndentConstant)
		if encodeError := encoder.Encode(document); encodeError != nil {
			return encodeError
		}
		return encoder.Close()
	default:
		return fmt.Errorf(unsupportedOutputFormatTemplateConstant, renderer.format)
	}
}

// outcomeDocument is the json and yaml shape of a command outcome.
type outcomeDocument struct {
	Command          string `json:"command" yaml:"command"`
	WorkingDirectory string `json:"working_directory,omitempty" yaml:"working_directory,omitempty"`
	StandardOutput   string `json:"stdout" yaml:"stdout"`
	StandardError    string `json:"stderr" yaml:"stderr"`
	ExitStatus       int    `json:"exit_status" yaml:"exit_status"`
	SystemError      string `json:"system_error,omitempty" yaml:"system_error,omitempty"`
}

func newBufferedOutcomeDocument(outcome execshell.LegacyExecutionOutcome) outcomeDocument {
	document := outcomeDocument{
		Command:          outcome.Command,
		WorkingDirectory: outcome.WorkingDirectory,
		StandardOutput:   outcome.StandardOutput,
		StandardError:    outcome.StandardError,
		ExitStatus:       outcome.ExitStatus,
	}
	if outcome.SystemError != nil {
		document.SystemError = outcome.SystemError.Error()
	}
	return document
}

func newOutcomeDocument(request execshell.ExecutionRequest, outcome execshell.ExecutionOutcome) outcomeDocument {
	return outcomeDocument{
		Command:          request.Command,
		WorkingDirectory: request.WorkingDirectory,
		StandardOutput:   outcome.StandardOutput,
		StandardError:    outcome.StandardError,
		ExitStatus:       outcome.ExitStatus,
	}
}
