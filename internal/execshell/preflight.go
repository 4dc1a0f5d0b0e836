package execshell

import (
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

const (
	incompleteCommandMessageConstant = "command is incomplete and would leave the shell waiting for input"
	syntaxErrorTemplateConstant      = "shell syntax error: %w"
	preflightSourceNameConstant      = "command"
)

// ErrIncompleteCommand indicates an unterminated quote, substitution, or block.
var ErrIncompleteCommand = errors.New(incompleteCommandMessageConstant)

// CommandValidator inspects a command line before it is launched.
type CommandValidator interface {
	Validate(command string) error
}

// SyntaxValidator parses commands with the bash grammar.
type SyntaxValidator struct{}

// NewSyntaxValidator constructs a SyntaxValidator.
func NewSyntaxValidator() SyntaxValidator {
	return SyntaxValidator{}
}

// Validate returns ErrIncompleteCommand for truncated input and a wrapped parse error otherwise.
func (validator SyntaxValidator) Validate(command string) error {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	_, parseError := parser.Parse(strings.NewReader(command), preflightSourceNameConstant)
	if parseError == nil {
		return nil
	}
	if syntax.IsIncomplete(parseError) {
		return ErrIncompleteCommand
	}
	return fmt.Errorf(syntaxErrorTemplateConstant, parseError)
}
